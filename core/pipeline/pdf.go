package pipeline

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/siherrmann/herbrag/helper"
)

// ExtractPDFText reads the plain text of every page of the PDF at path.
// Pages are separated by a blank line so page headers stay on their own lines.
func ExtractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", helper.NewError("open pdf", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", helper.NewError(fmt.Sprintf("read pdf page %d", i), err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", helper.NewError("extract pdf text", fmt.Errorf("no text found in %s", path))
	}
	return content, nil
}
