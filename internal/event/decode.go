package event

import "encoding/json"

// DecodePayload converts an event payload into T. Payloads published on the
// in-process bus are already the concrete struct and hit the type assertion;
// payloads read back from the dead-letter file arrive as generic JSON maps and
// take the marshal round-trip instead.
func DecodePayload[T any](input any) (T, error) {
	if v, ok := input.(T); ok {
		return v, nil
	}
	var result T
	data, err := json.Marshal(input)
	if err != nil {
		return result, err
	}
	return result, json.Unmarshal(data, &result)
}
