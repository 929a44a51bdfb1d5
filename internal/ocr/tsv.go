package ocr

import (
	"sort"
	"strconv"
	"strings"
)

type tsvWord struct {
	text string
	conf float64 // -1 when tesseract did not score the word
	box  BoundingBox
	key  [3]int // block, paragraph, line
}

// parseTSV groups tesseract word rows into blocks. Words on the same
// tesseract line split into separate blocks across wide gaps, then blocks
// are assigned visual line numbers by vertical position.
func parseTSV(out string, page int) []TextBlock {
	var words []tsvWord
	for i, ln := range strings.Split(out, "\n") {
		if i == 0 || strings.TrimSpace(ln) == "" {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		n := make([]int, 8)
		ok := true
		for j := 2; j <= 9; j++ {
			v, err := strconv.Atoi(cols[j])
			if err != nil {
				ok = false
				break
			}
			n[j-2] = v
		}
		if !ok {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			conf = -1
		}
		words = append(words, tsvWord{
			text: text,
			conf: conf,
			box:  BoundingBox{X: n[4], Y: n[5], W: n[6], H: n[7]},
			key:  [3]int{n[0], n[1], n[2]},
		})
	}

	var blocks []TextBlock
	var cur []tsvWord
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, blockFromWords(cur, page))
			cur = nil
		}
	}
	for _, w := range words {
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			gap := w.box.X - prev.box.Right()
			if w.key != prev.key || gap > 2*max(prev.box.H, w.box.H) {
				flush()
			}
		}
		cur = append(cur, w)
	}
	flush()

	assignLines(blocks)
	return blocks
}

func blockFromWords(words []tsvWord, page int) TextBlock {
	texts := make([]string, len(words))
	box := words[0].box
	var sum, n float64
	for i, w := range words {
		texts[i] = w.text
		box = union(box, w.box)
		if w.conf >= 0 {
			sum += w.conf
			n++
		}
	}
	text := strings.Join(texts, " ")
	conf := heuristicConfidence(text)
	if n > 0 {
		conf = sum / n / 100.0
	}
	return TextBlock{Text: text, Confidence: clamp01(conf), Page: page, Box: box, Kind: KindText}
}

// assignLines numbers blocks by vertical band, then orders them left to right.
func assignLines(blocks []TextBlock) {
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Box.Y < blocks[j].Box.Y })
	line, top, bottom := 0, 0, -1
	for i := range blocks {
		b := blocks[i].Box
		center := b.Y + b.H/2
		if line == 0 || center < top || center > bottom {
			line++
			top, bottom = b.Y, b.Y+b.H
		}
		blocks[i].Line = line
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Line != blocks[j].Line {
			return blocks[i].Line < blocks[j].Line
		}
		return blocks[i].Box.X < blocks[j].Box.X
	})
}

func union(a, b BoundingBox) BoundingBox {
	x0, y0 := min(a.X, b.X), min(a.Y, b.Y)
	x1, y1 := max(a.Right(), b.Right()), max(a.Y+a.H, b.Y+b.H)
	return BoundingBox{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
