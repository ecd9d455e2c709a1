//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package encoding normalizes ingested text to valid UTF-8. Legacy CJK
// encodings are detected from byte patterns and converted before the text
// reaches chunking and embedding.
package encoding

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

var errUnknownEncoding = errors.New("encoding: no decoder for detected encoding")

// Encoding names a detected text encoding.
type Encoding string

// Detectable encodings.
const (
	UTF8     Encoding = "UTF-8"
	GBK      Encoding = "GBK"
	Big5     Encoding = "Big5"
	ShiftJIS Encoding = "Shift_JIS"
	EUCKR    Encoding = "EUC-KR"
	Unknown  Encoding = "Unknown"
)

// decoders maps each detectable legacy encoding to its x/text decoder.
var decoders = map[Encoding]encoding.Encoding{
	GBK:      simplifiedchinese.GBK,
	Big5:     traditionalchinese.Big5,
	ShiftJIS: japanese.ShiftJIS,
	EUCKR:    korean.EUCKR,
}

// byteRange is an inclusive byte interval.
type byteRange struct{ lo, hi byte }

// pattern describes the double-byte shape of a legacy encoding: lead-byte
// ranges followed by trail-byte ranges.
type pattern struct {
	encoding Encoding
	lead     []byteRange
	trail    []byteRange
	// minHits is how many valid lead+trail pairs the text must contain.
	minHits int
	// minRatio is the minimum share of lead bytes that must be followed
	// by a valid trail byte.
	minRatio float64
}

// Detection order matters: GBK's lead range contains Big5's, so the
// stricter ratio checks run first.
var patterns = []pattern{
	{
		encoding: GBK,
		lead:     []byteRange{{0x81, 0xFE}},
		trail:    []byteRange{{0x40, 0x7E}, {0x80, 0xFE}},
		minHits:  2,
		minRatio: 0.8,
	},
	{
		encoding: Big5,
		lead:     []byteRange{{0xA1, 0xFE}},
		trail:    []byteRange{{0x40, 0x7E}, {0xA1, 0xFE}},
		minHits:  2,
		minRatio: 0.8,
	},
	{
		encoding: ShiftJIS,
		lead:     []byteRange{{0x81, 0x9F}, {0xE0, 0xEF}},
		trail:    []byteRange{{0x40, 0x7E}, {0x80, 0xFC}},
		minHits:  1,
	},
	{
		encoding: EUCKR,
		lead:     []byteRange{{0xA1, 0xFE}},
		trail:    []byteRange{{0xA1, 0xFE}},
		minHits:  1,
	},
}

// Detect reports the likely encoding of the text. Valid UTF-8 is always
// reported as UTF-8.
func Detect(text string) Encoding {
	if text == "" || utf8.ValidString(text) {
		return UTF8
	}
	data := []byte(text)
	for _, p := range patterns {
		if p.matches(data) {
			return p.encoding
		}
	}
	return Unknown
}

func (p pattern) matches(data []byte) bool {
	hits, leads := 0, 0
	for i := 0; i < len(data)-1; i++ {
		if !inRanges(data[i], p.lead) {
			continue
		}
		leads++
		if inRanges(data[i+1], p.trail) {
			hits++
		}
	}
	if hits < p.minHits {
		return false
	}
	if p.minRatio > 0 && float64(hits)/float64(leads) < p.minRatio {
		return false
	}
	return true
}

func inRanges(b byte, ranges []byteRange) bool {
	for _, r := range ranges {
		if b >= r.lo && b <= r.hi {
			return true
		}
	}
	return false
}

// NormalizeUTF8 returns the text as valid UTF-8. Detected legacy encodings
// are converted; anything still invalid afterwards is stripped rune by
// rune so downstream chunking never sees broken sequences.
func NormalizeUTF8(text string) string {
	detected := Detect(text)
	if detected != UTF8 {
		if converted, err := decode(text, detected); err == nil {
			text = converted
		}
	}
	return CleanInvalidUTF8(text)
}

// decode converts text from the given legacy encoding to UTF-8.
func decode(text string, from Encoding) (string, error) {
	dec, ok := decoders[from]
	if !ok {
		return text, errUnknownEncoding
	}
	reader := transform.NewReader(bytes.NewReader([]byte(text)), dec.NewDecoder())
	converted, err := io.ReadAll(reader)
	if err != nil {
		return text, err
	}
	return string(converted), nil
}

// CleanInvalidUTF8 drops invalid byte sequences from the text. Valid text
// is returned unchanged.
func CleanInvalidUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	var cleaned bytes.Buffer
	cleaned.Grow(len(text))
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && size == 1 {
			text = text[1:]
			continue
		}
		cleaned.WriteRune(r)
		text = text[size:]
	}
	return cleaned.String()
}

// RuneCount returns the number of characters in the text.
func RuneCount(text string) int {
	return utf8.RuneCountInString(text)
}
