package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Receipt labels carry a compact code so a scan identifies the carton without
// any manual entry.
//
// Format: WMS/<cargo marking>/<article number>
//
// The cargo marking may itself contain slashes (operators write things like
// "GODS-42/B" on paper), so parsing splits on the LAST slash: everything
// between the prefix and the final separator is the marking, the remainder is
// the article number.
const labelPrefix = "WMS/"

// LabelCode is the decoded content of one receipt label QR code
type LabelCode struct {
	CargoMarking  string
	ArticleNumber string
}

// EncodeLabel builds the QR content for a receipt label
func EncodeLabel(cargoMarking, articleNumber string) string {
	return labelPrefix + cargoMarking + "/" + articleNumber
}

// DecodeLabel parses scanned QR content back into its parts
func DecodeLabel(code string) (*LabelCode, error) {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, labelPrefix) {
		return nil, errors.New("not a receipt label code")
	}

	payload := code[len(labelPrefix):]
	idx := strings.LastIndex(payload, "/")
	if idx <= 0 || idx == len(payload)-1 {
		return nil, fmt.Errorf("malformed label code %q", code)
	}

	return &LabelCode{
		CargoMarking:  payload[:idx],
		ArticleNumber: payload[idx+1:],
	}, nil
}
