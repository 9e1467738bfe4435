// Plain-text image interchange: "<width> <height>" then one "<r> <g> <b>"
// line per pixel in row-major order
package io

import (
	"bufio"
	"fmt"
	goio "io"
	"strconv"
	"strings"

	"seam-carving/internal/core"
)

// ReadText parses the interchange format. Blank lines are ignored; every
// other malformation is reported as core.ErrInput.
func ReadText(r goio.Reader) (*core.Image, error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	next := func() ([]string, bool) {
		for scanner.Scan() {
			lineNo++
			if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}

	header, ok := next()
	if !ok {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: reading header: %v", core.ErrInput, err)
		}
		return nil, fmt.Errorf("%w: empty input, expected \"<width> <height>\"", core.ErrInput)
	}
	if len(header) != 2 {
		return nil, fmt.Errorf("%w: line %d: header has %d fields, expected \"<width> <height>\"", core.ErrInput, lineNo, len(header))
	}
	width, err := parseDimension(header[0])
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: width: %v", core.ErrInput, lineNo, err)
	}
	height, err := parseDimension(header[1])
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: height: %v", core.ErrInput, lineNo, err)
	}

	img := core.NewImage(width, height)
	total := width * height
	for i := 0; i < total; i++ {
		fields, ok := next()
		if !ok {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("%w: reading pixel %d: %v", core.ErrInput, i, err)
			}
			return nil, fmt.Errorf("%w: found %d pixels, header declares %dx%d = %d", core.ErrInput, i, width, height, total)
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d: pixel has %d fields, expected \"<r> <g> <b>\"", core.ErrInput, lineNo, len(fields))
		}

		var rgb [3]uint8
		for c, field := range fields {
			v, err := strconv.ParseUint(field, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: channel %q is not in 0..255", core.ErrInput, lineNo, field)
			}
			rgb[c] = uint8(v)
		}
		img.SetRGB(i%width, i/width, rgb[0], rgb[1], rgb[2])
	}

	if _, extra := next(); extra {
		return nil, fmt.Errorf("%w: line %d: data beyond the %d declared pixels", core.ErrInput, lineNo, total)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInput, err)
	}

	return img, nil
}

func parseDimension(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if v <= 0 || v > core.MaxDimension {
		return 0, fmt.Errorf("%d outside 1..%d", v, core.MaxDimension)
	}
	return v, nil
}

// WriteText serialises img in the interchange format.
func WriteText(w goio.Writer, img *core.Image) error {
	bw := bufio.NewWriter(w)
	width, height := img.Width(), img.Height()

	buf := make([]byte, 0, 16)
	buf = strconv.AppendInt(buf, int64(width), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(height), 10)
	buf = append(buf, '\n')
	if _, err := bw.Write(buf); err != nil {
		return err
	}

	for y := 0; y < height; y++ {
		rs, gs, bs := img.R.Row(y), img.G.Row(y), img.B.Row(y)
		for x := 0; x < width; x++ {
			buf = buf[:0]
			buf = strconv.AppendUint(buf, uint64(rs[x]), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(gs[x]), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(bs[x]), 10)
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}
