package bittrex

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spooky-finn/go-live-markets/domain"
)

// The exchange wraps every application payload the same way: JSON, run
// through a raw deflate stream, then base64. Two envelope shapes exist on the
// wire: hub invocations carry a one-element array of base64 strings, hub call
// replies carry a bare base64 string. Decoding is pure; every failure mode is
// non-fatal to the connection.

// DecodeArrayFrame decodes the array-shaped envelope used by "uE" and "uS"
// frames.
func DecodeArrayFrame[T any](args json.RawMessage) (*T, error) {
	var parts []string
	if err := json.Unmarshal(args, &parts); err != nil {
		return nil, fmt.Errorf("%w: envelope is not a string array: %s", domain.ErrParse, err)
	}
	if len(parts) == 0 {
		return nil, domain.ErrMissingData
	}
	return decodePayload[T](parts[0])
}

// DecodeStringFrame decodes the string-shaped envelope used by "QE*"
// snapshot replies.
func DecodeStringFrame[T any](raw json.RawMessage) (*T, error) {
	var payload string
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: envelope is not a string: %s", domain.ErrParse, err)
	}
	if payload == "" {
		return nil, domain.ErrMissingData
	}
	return decodePayload[T](payload)
}

func decodePayload[T any](payload string) (*T, error) {
	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDecode, err)
	}

	reader := flate.NewReader(bytes.NewReader(compressed))
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDecompress, err)
	}

	record := new(T)
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrParse, err)
	}
	return record, nil
}
