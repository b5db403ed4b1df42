// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"

	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

// Algorithm names the compression codec used by the compressed payload
// envelope (§3 "Compressed payload envelope").
type Algorithm string

const (
	GZIP    Algorithm = "GZIP"
	DEFLATE Algorithm = "DEFLATE"
)

// EncodeCompressed encodes inner with Encode, compresses the result with
// algo, and wraps it in an outer payload whose uuid is
// sparkplug.CompressedUUID, body is the compressed bytes, and whose single
// metric ("algorithm") names the codec used.
func EncodeCompressed(inner sparkplug.SparkplugBPayload, algo Algorithm) (sparkplug.SparkplugBPayload, error) {
	plain, err := Encode(inner)
	if err != nil {
		return sparkplug.SparkplugBPayload{}, err
	}
	var buf bytes.Buffer
	switch algo {
	case GZIP:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(plain); err != nil {
			return sparkplug.SparkplugBPayload{}, compressErr("EncodeCompressed", err)
		}
		if err := w.Close(); err != nil {
			return sparkplug.SparkplugBPayload{}, compressErr("EncodeCompressed", err)
		}
	case DEFLATE:
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return sparkplug.SparkplugBPayload{}, compressErr("EncodeCompressed", err)
		}
		if _, err := w.Write(plain); err != nil {
			return sparkplug.SparkplugBPayload{}, compressErr("EncodeCompressed", err)
		}
		if err := w.Close(); err != nil {
			return sparkplug.SparkplugBPayload{}, compressErr("EncodeCompressed", err)
		}
	default:
		return sparkplug.SparkplugBPayload{}, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "EncodeCompressed", Err: fmt.Errorf("algorithm %q", algo)}
	}
	return sparkplug.SparkplugBPayload{
		UUID: sparkplug.CompressedUUID,
		Body: buf.Bytes(),
		Metrics: []sparkplug.Metric{
			{Name: "algorithm", Value: sparkplug.NewString(string(algo))},
		},
	}, nil
}

// DecodeCompressed reverses EncodeCompressed: it reads the "algorithm"
// metric off outer, decompresses outer.Body accordingly, and decodes the
// result as the inner payload.
func DecodeCompressed(outer sparkplug.SparkplugBPayload) (sparkplug.SparkplugBPayload, error) {
	algo, ok := outer.CompressionAlgorithm()
	if !ok {
		return sparkplug.SparkplugBPayload{}, &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "DecodeCompressed", Err: fmt.Errorf("missing or malformed algorithm metric")}
	}
	var r io.Reader
	switch Algorithm(algo) {
	case GZIP:
		gz, err := gzip.NewReader(bytes.NewReader(outer.Body))
		if err != nil {
			return sparkplug.SparkplugBPayload{}, compressErr("DecodeCompressed", err)
		}
		defer gz.Close()
		r = gz
	case DEFLATE:
		r = flate.NewReader(bytes.NewReader(outer.Body))
	default:
		return sparkplug.SparkplugBPayload{}, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "DecodeCompressed", Err: fmt.Errorf("algorithm %q", algo)}
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return sparkplug.SparkplugBPayload{}, compressErr("DecodeCompressed", err)
	}
	return Decode(plain)
}

func compressErr(op string, err error) error {
	return &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: op, Err: err}
}
