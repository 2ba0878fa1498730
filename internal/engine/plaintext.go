package engine

import (
	"bytes"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"
)

// plainText extracts page text with the pure-Go reader. It is used when the
// plain engine is configured, and for encrypted documents pdfcpu could
// authenticate but not decrypt.
func (d *Document) plainText(index int) (string, error) {
	if d.plain == nil {
		var r *lpdf.Reader
		err := guard("open plain reader", func() error {
			var err error
			r, err = openPlain(d.clear, d.data, d.password)
			return err
		})
		if err != nil {
			return "", err
		}
		d.plain = r
	}

	var text string
	err := guard(fmt.Sprintf("plain text page %d", index+1), func() error {
		p := d.plain.Page(index + 1)
		if p.V.IsNull() {
			return nil
		}
		var err error
		text, err = p.GetPlainText(nil)
		return err
	})
	return text, err
}

func openPlain(clear, raw []byte, password string) (*lpdf.Reader, error) {
	if clear != nil {
		return lpdf.NewReader(bytes.NewReader(clear), int64(len(clear)))
	}
	return lpdf.NewReaderEncrypted(bytes.NewReader(raw), int64(len(raw)), passwordOnce(password))
}

// passwordOnce offers password a single time; the reader stops asking once
// it receives an empty string.
func passwordOnce(password string) func() string {
	offered := false
	return func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	}
}
