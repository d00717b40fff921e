package nevoton

import (
	"encoding/json"
	"fmt"
	"strings"
)

// API error code the device reports for a rejected credential.
const apiErrorInvalidCredential = 6

// truncateLen bounds response excerpts included in error messages.
const truncateLen = 200

// extractPayload locates the JSON object embedded in the device's
// malformed response stream.
//
// The controller emits its status line twice and sometimes garbage
// around the body, so framing cannot be trusted: the payload is taken
// as the substring between the first '{' and the last '}' of the
// decoded text.
//
// Returns:
//   - string: The candidate JSON text
//   - error: ErrAPIFailure if no '{' is present
func extractPayload(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", fmt.Errorf("%w: no JSON in response: %s", ErrAPIFailure, truncate(text, truncateLen))
	}

	text = text[start:]
	if end := strings.LastIndexByte(text, '}'); end != -1 {
		text = text[:end+1]
	}

	return text, nil
}

// decodePayload parses the extracted payload and classifies device
// error codes.
//
// Two top-level fields are checked before the payload reaches the
// caller:
//   - error_api: code 6 means the credential was rejected; any other
//     present value is a generic API failure
//   - error_device: any non-zero value is a device fault
//
// Unknown error_api codes are deliberately treated as generic failures
// rather than given new semantics.
//
// Returns:
//   - map[string]any: The decoded payload with no adverse error fields
//   - error: ErrInvalidCredential, or ErrAPIFailure
func decodePayload(text string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", ErrAPIFailure, err)
	}

	if raw, ok := data["error_api"]; ok {
		code := asInt(raw)
		if code == apiErrorInvalidCredential {
			return nil, fmt.Errorf("%w: api error %d", ErrInvalidCredential, code)
		}
		return nil, fmt.Errorf("%w: api error %d", ErrAPIFailure, code)
	}

	if raw, ok := data["error_device"]; ok {
		if code := asInt(raw); code != 0 {
			return nil, fmt.Errorf("%w: device error %d", ErrAPIFailure, code)
		}
	}

	return data, nil
}

// extractSnapshotValues navigates inputs.data[0].value to the flat
// point mapping. An absent or empty nesting yields an empty map, never
// an error: callers treat an empty snapshot as "no data yet".
func extractSnapshotValues(data map[string]any) map[string]any {
	inputs, ok := data["inputs"].(map[string]any)
	if !ok {
		return map[string]any{}
	}

	items, ok := inputs["data"].([]any)
	if !ok || len(items) == 0 {
		return map[string]any{}
	}

	first, ok := items[0].(map[string]any)
	if !ok {
		return map[string]any{}
	}

	values, ok := first["value"].(map[string]any)
	if !ok {
		return map[string]any{}
	}

	return values
}

// extractWriteAck reads the outputs.error_ch acknowledgement. A zero
// channel error is the only success signal; a non-zero code or a
// missing outputs section is a write failure, not a protocol error.
func extractWriteAck(data map[string]any) bool {
	outputs, ok := data["outputs"].(map[string]any)
	if !ok {
		return false
	}

	raw, ok := outputs["error_ch"]
	if !ok {
		return false
	}

	return asInt(raw) == 0
}

// asInt coerces a decoded JSON value to int. JSON numbers arrive as
// float64; anything non-numeric coerces to -1 so it reads as an
// adverse code rather than silently passing a zero check.
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return -1
	}
}

// truncate shortens a string for inclusion in error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
