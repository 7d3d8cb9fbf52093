package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Header is the fixed interchange column order. Files with any other
// header are rejected before a single row is read.
var Header = []string{
	"section", "name", "description", "price", "tags",
	"has_image", "image_id", "image_filename", "image_url",
}

// Read parses interchange rows from r, validating the header first.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range Header {
		if header[i] != name {
			return nil, fmt.Errorf("bad header: column %d is %q, want %q", i+1, header[i], name)
		}
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}

		hasImage, _ := strconv.ParseBool(record[5])
		rows = append(rows, Row{
			Section:       record[0],
			Name:          record[1],
			Description:   record[2],
			Price:         record[3],
			Tags:          record[4],
			HasImage:      hasImage,
			ImageID:       record[6],
			ImageFilename: record[7],
			ImageURL:      record[8],
		})
	}
	return rows, nil
}

// Write emits rows with the fixed header.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Section, r.Name, r.Description, r.Price, r.Tags,
			strconv.FormatBool(r.HasImage), r.ImageID, r.ImageFilename, r.ImageURL,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
