package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	copyPrefix     = "COPY "
	copyTerminator = `\.`
)

// parseDump scans a COPY-format bulk dump in a single forward pass.
// onBlock (optional) fires once per recognized block header; onRow
// fires once per data row with the owning block and its tab-split
// cells. Lines outside any block are skipped. A block whose
// terminator is never seen before end of input is a fatal error.
//
// onRowMismatch controls rows whose cell count disagrees with the
// header: "error" rejects the row (and the run), "truncate" keeps the
// legacy zip alignment where extra cells are dropped and missing
// cells are treated as absent.
func parseDump(r io.Reader, onRowMismatch string, onBlock func(*DumpBlock) error, onRow func(*DumpBlock, []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if !strings.HasPrefix(line, copyPrefix) || !strings.Contains(line, "(") {
			continue
		}

		block, err := parseCopyHeader(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if onBlock != nil {
			if err := onBlock(block); err != nil {
				return err
			}
		}

		terminated := false
		for sc.Scan() {
			lineNo++
			data := sc.Text()
			if data == copyTerminator {
				terminated = true
				break
			}
			cells := strings.Split(data, "\t")
			if len(cells) != len(block.Columns) && onRowMismatch != rowMismatchTruncate {
				return fmt.Errorf("table %s line %d: row has %d cells, header declares %d columns",
					block.Table, lineNo, len(cells), len(block.Columns))
			}
			if err := onRow(block, cells); err != nil {
				return err
			}
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read dump: %w", err)
		}
		if !terminated {
			return fmt.Errorf("table %s: dump truncated inside COPY block (no %q terminator before end of input)",
				block.Table, copyTerminator)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	return nil
}

// parseCopyHeader extracts the bare table name and column list from a
// COPY directive line, e.g.
//
//	COPY public._core_team (id, name, initial_seed) FROM stdin;
//
// The table name is the last dot-separated segment of the qualified
// identifier before the column list.
func parseCopyHeader(line string) (*DumpBlock, error) {
	open := strings.IndexByte(line, '(')
	closing := strings.IndexByte(line, ')')
	if open < 0 || closing < open {
		return nil, fmt.Errorf("malformed COPY header %q", line)
	}

	qualified := strings.Fields(line[len(copyPrefix):open])
	if len(qualified) == 0 {
		return nil, fmt.Errorf("malformed COPY header %q: missing table name", line)
	}
	table := qualified[0]
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		table = table[i+1:]
	}
	if table == "" {
		return nil, fmt.Errorf("malformed COPY header %q: empty table name", line)
	}

	cols := strings.Split(line[open+1:closing], ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	if len(cols) == 1 && cols[0] == "" {
		return nil, fmt.Errorf("malformed COPY header %q: empty column list", line)
	}

	return &DumpBlock{Table: table, Columns: cols}, nil
}
