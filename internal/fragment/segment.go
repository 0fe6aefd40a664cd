package fragment

import "fmt"

// Options controls how lines are grouped into blocks and blocks into fragments.
type Options struct {
	LinesPerBlock     int
	BlocksPerFragment int
	// Overlap slides the fragment window one block at a time instead of
	// advancing by a whole fragment.
	Overlap bool
}

// Segment groups consecutive lines of one file into blocks of linesPerBlock.
// The final block is short when len(lines) is not a multiple of linesPerBlock.
func Segment(lines []Line, linesPerBlock int) []Block {
	if linesPerBlock < 1 {
		panic(fmt.Sprintf("fragment: lines per block must be positive, got %d", linesPerBlock))
	}

	blocks := make([]Block, 0, (len(lines)+linesPerBlock-1)/linesPerBlock)
	for i := 0; i < len(lines); i += linesPerBlock {
		end := min(i+linesPerBlock, len(lines))
		part := lines[i:end:end]
		blocks = append(blocks, Block{
			File:      part[0].File,
			StartLine: part[0].Number,
			EndLine:   part[len(part)-1].Number,
			Lines:     part,
		})
	}
	return blocks
}

// Build groups consecutive blocks of one file into fragments of
// blocksPerFragment blocks. Without overlap the grouping is greedy and the
// last fragment may hold fewer blocks. With overlap every window of
// blocksPerFragment consecutive blocks becomes a fragment; a file with fewer
// blocks than that still yields one fragment holding all of them.
func Build(blocks []Block, blocksPerFragment int, overlap bool) []Fragment {
	if blocksPerFragment < 1 {
		panic(fmt.Sprintf("fragment: blocks per fragment must be positive, got %d", blocksPerFragment))
	}

	step := blocksPerFragment
	if overlap {
		step = 1
	}

	var frags []Fragment
	for i := 0; i < len(blocks); i += step {
		end := min(i+blocksPerFragment, len(blocks))
		part := blocks[i:end:end]
		frags = append(frags, Fragment{
			Index:     len(frags),
			Position:  len(frags),
			File:      part[0].File,
			StartLine: part[0].StartLine,
			EndLine:   part[len(part)-1].EndLine,
			Blocks:    part,
		})
		if end == len(blocks) {
			break
		}
	}
	return frags
}

// FromLines runs Segment and Build over the lines of a single file.
func FromLines(lines []Line, opts Options) []Fragment {
	return Build(Segment(lines, opts.LinesPerBlock), opts.BlocksPerFragment, opts.Overlap)
}

// Renumber assigns run-wide indexes to fragments in slice order.
func Renumber(frags []Fragment) {
	for i := range frags {
		frags[i].Index = i
	}
}
