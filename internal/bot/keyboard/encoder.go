package keyboard

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CallbackDataSeparator splits the action token from its payload, as in
	// "pick:64f1a2b3c4d5e6f7a8b9c0d1".
	CallbackDataSeparator = ":"
	// CallbackDataLimitBytes is the Telegram limit for callback data. Item ids
	// are 24-byte ObjectID hex strings, so every payload fits with room to
	// spare, but the limit is still enforced at encode time.
	CallbackDataLimitBytes = 64
)

// EncodeCallback joins an action token with its payload into callback data.
func EncodeCallback(unique, data string) (string, error) {
	payload := unique
	if data != "" {
		payload = unique + CallbackDataSeparator + data
	}

	if len(payload) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(payload))
	}

	return payload, nil
}

// DecodeCallback splits callback data back into its action token and payload.
// Only the first separator splits, so payloads may themselves contain ":".
func DecodeCallback(callbackData string) (unique, data string, err error) {
	if callbackData == "" {
		return "", "", errors.New("callback data is empty")
	}

	idx := strings.Index(callbackData, CallbackDataSeparator)
	if idx == -1 {
		return callbackData, "", nil
	}

	return callbackData[:idx], callbackData[idx+len(CallbackDataSeparator):], nil
}
