package main

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/egonelbre/exp-tile-compression/tile"
)

func readValues(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer f.Close()

	var values []int
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "%s: value %d", path, len(values))
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}
	return values, nil
}

func readStrings(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer f.Close()

	var values []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		values = append(values, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}
	return values, nil
}

func readTile(path string) (*tile.Tile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}
	t, err := tile.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse %s", path)
	}
	return t, nil
}

// formatSection renders the decoded content of a section in the format
// accepted by encode.
func formatSection(s *tile.Section) (string, error) {
	var b strings.Builder
	if s.Mode == tile.ModeStrings {
		values, err := s.Strings()
		if err != nil {
			return "", err
		}
		for _, v := range values {
			b.WriteString(v)
			b.WriteByte('\n')
		}
		return b.String(), nil
	}

	values, err := s.Values()
	if err != nil {
		return "", err
	}
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(v))
	}
	if len(values) > 0 {
		b.WriteByte('\n')
	}
	return b.String(), nil
}
