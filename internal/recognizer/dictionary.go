package recognizer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// BlankIndex is the reserved CTC blank symbol's position in every
// CharacterDictionary: index 0.
const BlankIndex = 0

// unknownRune is returned by IndexToChar for an out-of-range index.
const unknownRune = '?'

// CharacterDictionary is a fixed-size, single-rune-per-slot character table:
// index 0 is always the reserved CTC blank, indices 1..N-2 are the
// dictionary file's lines in order, and index N-1 is an explicit space
// character. The recognition model's output class ids map directly onto
// these indices, so decoding never needs to shift or offset by one.
type CharacterDictionary struct {
	chars []rune
	index map[rune]int
}

// removeBOM strips a UTF-8 byte-order mark from the first line only.
func removeBOM(line string, isFirstLine bool) string {
	if isFirstLine {
		return strings.TrimPrefix(line, "﻿")
	}
	return line
}

// LoadCharacterDictionary reads one character per non-empty line of path and
// builds a fixed-size dictionary: blank at index 0, the file's characters in
// order at indices 1..len(lines), and an explicit space at the final index.
// A line with more than one rune is rejected, since each dictionary slot
// must map onto exactly one CTC output class.
func LoadCharacterDictionary(path string) (*CharacterDictionary, error) {
	if path == "" {
		return nil, errors.New("dictionary path cannot be empty")
	}
	f, err := os.Open(path) //nolint:gosec // G304: opening operator-provided dictionary file is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error closing dictionary file: %v\n", cerr)
		}
	}()

	scanner := bufio.NewScanner(f)
	lines := make([]rune, 0, 512)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := strings.TrimSuffix(scanner.Text(), "\r")
		raw = removeBOM(raw, lineNum == 1)
		if raw == "" {
			continue
		}
		runes := []rune(raw)
		if len(runes) != 1 {
			return nil, fmt.Errorf("dictionary line %d has %d runes, want exactly 1", lineNum, len(runes))
		}
		lines = append(lines, runes[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading dictionary: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("dictionary is empty: %s", path)
	}

	return newCharacterDictionary(lines), nil
}

// LoadCharacterDictionaries merges multiple dictionary files' character
// lines, in file order with de-duplication (first occurrence wins), then
// builds a single fixed-size dictionary the same way LoadCharacterDictionary
// does for one file.
func LoadCharacterDictionaries(paths []string) (*CharacterDictionary, error) {
	if len(paths) == 0 {
		return nil, errors.New("no dictionary paths provided")
	}
	seen := make(map[rune]struct{}, 1024)
	lines := make([]rune, 0, 1024)
	for _, p := range paths {
		if p == "" {
			continue
		}
		d, err := LoadCharacterDictionary(p)
		if err != nil {
			return nil, err
		}
		for _, r := range d.chars[1 : len(d.chars)-1] { // skip the blank slot and the trailing space slot
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			lines = append(lines, r)
		}
	}
	if len(lines) == 0 {
		return nil, errors.New("merged dictionary is empty")
	}
	return newCharacterDictionary(lines), nil
}

func newCharacterDictionary(lines []rune) *CharacterDictionary {
	n := len(lines) + 2
	chars := make([]rune, n)
	copy(chars[1:], lines)
	chars[n-1] = ' '

	index := make(map[rune]int, n)
	for i, r := range chars {
		if i == BlankIndex {
			continue
		}
		if _, ok := index[r]; !ok {
			index[r] = i
		}
	}

	return &CharacterDictionary{chars: chars, index: index}
}

// Size returns the dictionary's total slot count (blank + lines + space).
func (d *CharacterDictionary) Size() int {
	if d == nil {
		return 0
	}
	return len(d.chars)
}

// SpaceIndex returns the index of the dictionary's trailing space slot.
func (d *CharacterDictionary) SpaceIndex() int {
	if d == nil || len(d.chars) == 0 {
		return -1
	}
	return len(d.chars) - 1
}

// IndexToChar returns the character at index, or '?' if index is out of
// range. Index 0 (BlankIndex) is in range and returns the reserved blank
// rune ('\0'), not the unknown sentinel.
func (d *CharacterDictionary) IndexToChar(index int) rune {
	if d == nil || index < 0 || index >= len(d.chars) {
		return unknownRune
	}
	return d.chars[index]
}

// CharToIndex returns the index of r, or -1 if r is not in the dictionary.
func (d *CharacterDictionary) CharToIndex(r rune) int {
	if d == nil {
		return -1
	}
	if idx, ok := d.index[r]; ok {
		return idx
	}
	return -1
}

// Contains reports whether r has a slot in the dictionary.
func (d *CharacterDictionary) Contains(r rune) bool {
	return d.CharToIndex(r) >= 0
}

// Filter removes any runes from text that are not present in the
// dictionary. A nil dictionary returns text unchanged.
func (d *CharacterDictionary) Filter(text string) string {
	if d == nil || len(d.index) == 0 {
		return text
	}
	runes := []rune(text)
	filtered := make([]rune, 0, len(runes))
	for _, r := range runes {
		if d.Contains(r) {
			filtered = append(filtered, r)
		}
	}
	return string(filtered)
}

// DecodeIndices maps a slice of CTC class indices (already collapsed, with
// blanks removed) into their characters, substituting '?' for any
// out-of-range index.
func (d *CharacterDictionary) DecodeIndices(indices []int) string {
	var sb strings.Builder
	sb.Grow(len(indices))
	for _, idx := range indices {
		sb.WriteRune(d.IndexToChar(idx))
	}
	return sb.String()
}
