package extract

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
)

// WordStreamBackend reads the text of Word 97-2003 files straight from the
// OLE2 container: it walks the piece table in the table stream and decodes
// each piece from the WordDocument stream. Formatting is ignored.
type WordStreamBackend struct{}

func (WordStreamBackend) Name() string     { return "word-stream" }
func (WordStreamBackend) Requires() string { return "word-stream" }
func (WordStreamBackend) Available() error { return nil }

// FIB offsets (Word 97 layout).
const (
	fibIdent      = 0xA5EC
	fibFlagsOff   = 0x000A
	fibWhichTable = 0x0200
	fibEncrypted  = 0x0100
	fibFcClxOff   = 0x01A2
	fibLcbClxOff  = 0x01A6
)

func (WordStreamBackend) Extract(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return nil, fmt.Errorf("open OLE2 container: %w", err)
	}
	streams := make(map[string][]byte, 3)
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "WordDocument", "0Table", "1Table":
			data, err := io.ReadAll(entry)
			if err != nil {
				return nil, fmt.Errorf("read %s stream: %w", entry.Name, err)
			}
			streams[entry.Name] = data
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	word := streams["WordDocument"]
	if len(word) < fibLcbClxOff+4 {
		return nil, fmt.Errorf("no WordDocument stream")
	}
	if binary.LittleEndian.Uint16(word) != fibIdent {
		return nil, fmt.Errorf("not a Word 97-2003 document")
	}
	flags := binary.LittleEndian.Uint16(word[fibFlagsOff:])
	if flags&fibEncrypted != 0 {
		return nil, fmt.Errorf("document is encrypted")
	}
	tableName := "0Table"
	if flags&fibWhichTable != 0 {
		tableName = "1Table"
	}
	table := streams[tableName]
	fcClx := binary.LittleEndian.Uint32(word[fibFcClxOff:])
	lcbClx := binary.LittleEndian.Uint32(word[fibLcbClxOff:])
	if uint64(fcClx)+uint64(lcbClx) > uint64(len(table)) || lcbClx == 0 {
		return nil, fmt.Errorf("piece table out of range")
	}

	pieces, err := pieceTable(table[fcClx : fcClx+lcbClx])
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, p := range pieces {
		sb.WriteString(p.decode(word))
	}
	return &Result{Text: cleanWordText(sb.String())}, nil
}

type piece struct {
	cpStart, cpEnd uint32
	fc             uint32
	compressed     bool
}

// pieceTable parses the Clx structure: optional Prc entries followed by a Pcdt.
func pieceTable(clx []byte) ([]piece, error) {
	i := 0
	for i < len(clx) && clx[i] == 0x01 {
		if i+3 > len(clx) {
			return nil, fmt.Errorf("truncated Prc")
		}
		i += 3 + int(binary.LittleEndian.Uint16(clx[i+1:]))
	}
	if i+5 > len(clx) || clx[i] != 0x02 {
		return nil, fmt.Errorf("missing Pcdt")
	}
	lcb := int(binary.LittleEndian.Uint32(clx[i+1:]))
	plc := clx[i+5:]
	if lcb > len(plc) || lcb < 4 {
		return nil, fmt.Errorf("truncated PlcPcd")
	}
	n := (lcb - 4) / 12
	cps := plc[:4*(n+1)]
	pcds := plc[4*(n+1):]
	out := make([]piece, 0, n)
	for k := 0; k < n; k++ {
		fc := binary.LittleEndian.Uint32(pcds[k*8+2:])
		out = append(out, piece{
			cpStart:    binary.LittleEndian.Uint32(cps[k*4:]),
			cpEnd:      binary.LittleEndian.Uint32(cps[(k+1)*4:]),
			fc:         fc &^ 0x40000000,
			compressed: fc&0x40000000 != 0,
		})
	}
	return out, nil
}

func (p piece) decode(word []byte) string {
	if p.cpEnd <= p.cpStart {
		return ""
	}
	count := int(p.cpEnd - p.cpStart)
	if p.compressed {
		start := int(p.fc / 2)
		if start+count > len(word) {
			return ""
		}
		s, err := charmap.Windows1252.NewDecoder().Bytes(word[start : start+count])
		if err != nil {
			return ""
		}
		return string(s)
	}
	start := int(p.fc)
	if start+2*count > len(word) {
		return ""
	}
	units := make([]uint16, count)
	for k := range units {
		units[k] = binary.LittleEndian.Uint16(word[start+2*k:])
	}
	return string(utf16.Decode(units))
}

// cleanWordText maps Word control characters to plain text and drops field codes,
// keeping only the displayed field result.
func cleanWordText(s string) string {
	var sb strings.Builder
	depth := 0
	hidden := make([]bool, 0, 4)
	for _, r := range s {
		switch r {
		case 0x13: // field begin
			depth++
			hidden = append(hidden, true)
			continue
		case 0x14: // field separator
			if depth > 0 {
				hidden[depth-1] = false
			}
			continue
		case 0x15: // field end
			if depth > 0 {
				depth--
				hidden = hidden[:depth]
			}
			continue
		}
		if depth > 0 && hidden[depth-1] {
			continue
		}
		switch r {
		case '\r', 0x0B, 0x0C, 0x0E:
			sb.WriteByte('\n')
		case 0x07:
			sb.WriteByte('\t')
		case 0x1E:
			sb.WriteByte('-')
		case 0x1F, 0x01, 0x08:
		default:
			sb.WriteRune(r)
		}
	}
	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
