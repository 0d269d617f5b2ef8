// Package parser turns markdown deck files into cards.
//
// A deck file is a sequence of paragraphs separated by blank lines. A
// paragraph containing " / " is a basic card (question / answer). A
// paragraph containing square brackets is a cloze card; each bracketed span
// becomes its own card, and all cards from one paragraph form a sibling
// family. Anything else is ignored.
package parser

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/drill-api/internal/domain"
)

const deckExtension = ".md"

// basicSeparator splits a basic card's question from its answer.
const basicSeparator = " / "

// ParseDeck walks directory for markdown files and parses every card in
// them. The deck name of a card is the file's path relative to the
// directory, without the extension.
func ParseDeck(directory string) ([]domain.Card, error) {
	root, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("invalid deck directory %q: %w", directory, err)
	}

	var cards []domain.Card
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), deckExtension) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read deck file %q: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		deckName := strings.TrimSuffix(filepath.ToSlash(rel), deckExtension)
		parsed, err := ParseFile(deckName, string(content))
		if err != nil {
			return err
		}
		cards = append(cards, parsed...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk deck directory: %w", err)
	}
	return cards, nil
}

// ParseFile parses one deck file's content.
func ParseFile(deckName, content string) ([]domain.Card, error) {
	var cards []domain.Card
	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		switch {
		case strings.Contains(paragraph, basicSeparator):
			card, ok, err := parseBasic(deckName, paragraph)
			if err != nil {
				return nil, err
			}
			if ok {
				cards = append(cards, card)
			}
		case strings.Contains(paragraph, "[") && strings.Contains(paragraph, "]"):
			clozes, err := parseCloze(deckName, paragraph)
			if err != nil {
				return nil, err
			}
			cards = append(cards, clozes...)
		}
	}
	return cards, nil
}

func parseBasic(deckName, paragraph string) (domain.Card, bool, error) {
	sep := strings.Index(paragraph, basicSeparator)
	question := strings.TrimSpace(paragraph[:sep])
	answer := strings.TrimSpace(paragraph[sep+len(basicSeparator):])
	if question == "" || answer == "" {
		return domain.Card{}, false, nil
	}
	card, err := domain.NewCard(deckName, domain.BasicContent{
		Question: question,
		Answer:   answer,
	})
	if err != nil {
		return domain.Card{}, false, err
	}
	return card, true, nil
}

// parseCloze emits one card per bracketed deletion. Offsets are into the
// text with brackets stripped, so distinct deletions of the same text share
// it verbatim and therefore share a family fingerprint.
func parseCloze(deckName, paragraph string) ([]domain.Card, error) {
	clean := strings.Map(func(r rune) rune {
		if r == '[' || r == ']' {
			return -1
		}
		return r
	}, paragraph)

	var cards []domain.Card
	start := -1
	index := 0
	for _, r := range paragraph {
		switch r {
		case '[':
			start = index
		case ']':
			if start >= 0 && index > start {
				card, err := domain.NewCard(deckName, domain.ClozeContent{
					Text:  clean,
					Start: start,
					End:   index - 1,
				})
				if err != nil {
					return nil, err
				}
				cards = append(cards, card)
			}
			start = -1
		default:
			index += len(string(r))
		}
	}
	return cards, nil
}
