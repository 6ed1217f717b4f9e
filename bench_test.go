// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jreader_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/creachadair/jreader"
)

// benchInput returns a synthetic document with n user records.
func benchInput(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"users":[`)
	for i := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"id":%d,"name":"user é %d","score":%d.25,"active":%v,"tags":["a","b",null]}`,
			i, i, i*3, i%2 == 0)
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

func BenchmarkReader(b *testing.B) {
	input := benchInput(2000)
	b.Logf("Benchmark input: %d bytes", len(input))

	b.Run("Decoder", func(b *testing.B) {
		for b.Loop() {
			dec := json.NewDecoder(bytes.NewReader(input))
			for {
				_, err := dec.Token()
				if err == io.EOF {
					break
				} else if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
			}
		}
	})

	b.Run("Scanner", func(b *testing.B) {
		for b.Loop() {
			s := jreader.NewScanner(bytes.NewReader(input))
			for {
				err := s.Next()
				if err == io.EOF {
					break
				} else if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
			}
		}
	})

	b.Run("Reader", func(b *testing.B) {
		for b.Loop() {
			r := jreader.NewReader(bytes.NewReader(input))
			for {
				tok, err := r.Next()
				if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				} else if tok.Kind == jreader.EndDocument {
					break
				}
			}
		}
	})

	b.Run("Skip", func(b *testing.B) {
		for b.Loop() {
			r := jreader.NewReader(bytes.NewReader(input))
			if err := r.SkipValue(); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})
}
