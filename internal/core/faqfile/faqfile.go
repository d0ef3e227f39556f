// Package faqfile decodes uploaded FAQ sets. Bots accept exactly two source
// formats: a JSON array of {question, answer} objects, or a CSV file with
// "question" and "answer" columns.
package faqfile

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/faqdesk/supportbot/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: .json or .csv only")
	ErrNoFAQs            = errors.New("no valid FAQ data found in the uploaded file")

	// ErrInvalid wraps every malformed-content failure so callers can map
	// the whole family to a 400.
	ErrInvalid = errors.New("invalid FAQ file")
)

// Decode picks the codec from the filename extension.
func Decode(filename string, data []byte) ([]models.FAQItem, error) {
	var (
		faqs []models.FAQItem
		err  error
	)
	switch {
	case strings.HasSuffix(filename, ".json"):
		faqs, err = decodeJSON(data)
	case strings.HasSuffix(filename, ".csv"):
		faqs, err = decodeCSV(data)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(faqs) == 0 {
		return nil, ErrNoFAQs
	}
	return faqs, nil
}

func decodeJSON(data []byte) ([]models.FAQItem, error) {
	var raw []map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: not a JSON array of objects: %v", ErrInvalid, err)
	}
	faqs := make([]models.FAQItem, 0, len(raw))
	for _, item := range raw {
		q, okQ := item["question"]
		a, okA := item["answer"]
		if !okQ || !okA {
			return nil, fmt.Errorf("%w: every item needs 'question' and 'answer'", ErrInvalid)
		}
		faqs = append(faqs, models.FAQItem{Question: q, Answer: a})
	}
	return faqs, nil
}

func decodeCSV(data []byte) ([]models.FAQItem, error) {
	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read CSV header: %v", ErrInvalid, err)
	}

	qIdx, aIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "question":
			qIdx = i
		case "answer":
			aIdx = i
		}
	}
	if qIdx == -1 || aIdx == -1 {
		return nil, fmt.Errorf("%w: CSV must have 'question' and 'answer' columns", ErrInvalid)
	}

	var faqs []models.FAQItem
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read CSV row: %v", ErrInvalid, err)
		}
		if qIdx >= len(record) || aIdx >= len(record) {
			return nil, fmt.Errorf("%w: CSV row missing question or answer field", ErrInvalid)
		}
		faqs = append(faqs, models.FAQItem{Question: record[qIdx], Answer: record[aIdx]})
	}
	return faqs, nil
}
