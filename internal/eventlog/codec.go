package eventlog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/abdoElHodaky/matchcore/internal/book"
)

// WriteTo serialises records as one pipe-delimited line each, in order.
// Fields that don't apply to a given Kind are written as zero values; the
// reader decodes all nine fields of every line regardless of Kind.
func WriteTo(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintln(bw, encodeLine(r)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCompressed is WriteTo through a zstd encoder, for archiving long
// replay logs. The compressed
// stream decodes back to byte-identical plaintext via ReadCompressed.
func WriteCompressed(w io.Writer, records []Record) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := WriteTo(enc, records); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadFrom parses a stream written by WriteTo.
func ReadFrom(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		rec, err := decodeLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

// ReadCompressed is ReadFrom through a zstd decoder.
func ReadCompressed(r io.Reader) ([]Record, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return ReadFrom(dec)
}

const fieldSep = "|"

func encodeLine(r Record) string {
	fields := []string{
		r.ExternalID,
		strconv.Itoa(int(r.Kind)),
		strconv.Itoa(int(r.Side)),
		strconv.FormatInt(int64(r.Price), 10),
		strconv.FormatUint(uint64(r.Quantity), 10),
		strconv.Itoa(int(r.TIF)),
		strconv.FormatInt(int64(r.LimitPrice), 10),
		strconv.FormatUint(uint64(r.TargetID), 10),
		encodeTrail(r.Trail),
	}
	return strings.Join(fields, fieldSep)
}

func encodeTrail(t *TrailParams) string {
	if t == nil {
		return "-"
	}
	return strings.Join([]string{
		strconv.Itoa(t.Kind),
		strconv.FormatInt(int64(t.Offset), 10),
		strconv.FormatInt(t.PercentBps, 10),
		strconv.Itoa(t.AtrPeriod),
		strconv.FormatInt(t.AtrMultiple, 10),
	}, ",")
}

func decodeLine(line string) (Record, error) {
	parts := strings.Split(line, fieldSep)
	if len(parts) != 9 {
		return Record{}, fmt.Errorf("eventlog: malformed record (%d fields): %q", len(parts), line)
	}

	kind, err := strconv.Atoi(parts[1])
	if err != nil {
		return Record{}, fmt.Errorf("eventlog: bad kind: %w", err)
	}
	side, err := strconv.Atoi(parts[2])
	if err != nil {
		return Record{}, fmt.Errorf("eventlog: bad side: %w", err)
	}
	price, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("eventlog: bad price: %w", err)
	}
	qty, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("eventlog: bad quantity: %w", err)
	}
	timeInForce, err := strconv.Atoi(parts[5])
	if err != nil {
		return Record{}, fmt.Errorf("eventlog: bad tif: %w", err)
	}
	limitPrice, err := strconv.ParseInt(parts[6], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("eventlog: bad limit price: %w", err)
	}
	targetID, err := strconv.ParseUint(parts[7], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("eventlog: bad target id: %w", err)
	}
	trail, err := decodeTrail(parts[8])
	if err != nil {
		return Record{}, err
	}

	return Record{
		ExternalID: parts[0],
		Kind:       Kind(kind),
		Side:       book.Side(side),
		Price:      book.Price(price),
		Quantity:   book.Quantity(qty),
		TIF:        book.TimeInForce(timeInForce),
		LimitPrice: book.Price(limitPrice),
		TargetID:   book.OrderID(targetID),
		Trail:      trail,
	}, nil
}

func decodeTrail(s string) (*TrailParams, error) {
	if s == "-" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return nil, fmt.Errorf("eventlog: malformed trail params: %q", s)
	}
	kind, err1 := strconv.Atoi(parts[0])
	offset, err2 := strconv.ParseInt(parts[1], 10, 64)
	bps, err3 := strconv.ParseInt(parts[2], 10, 64)
	period, err4 := strconv.Atoi(parts[3])
	mult, err5 := strconv.ParseInt(parts[4], 10, 64)
	for _, e := range []error{err1, err2, err3, err4, err5} {
		if e != nil {
			return nil, fmt.Errorf("eventlog: malformed trail params: %q: %w", s, e)
		}
	}
	return &TrailParams{Kind: kind, Offset: book.Price(offset), PercentBps: bps, AtrPeriod: period, AtrMultiple: mult}, nil
}
