package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Card-specific validation errors.
var (
	// ErrCardDeckEmpty is returned when a card has no deck name.
	ErrCardDeckEmpty = errors.New("card deck name cannot be empty")

	// ErrCardContentNil is returned when a card has no content.
	ErrCardContentNil = errors.New("card content cannot be nil")

	// ErrInvalidClozeSpan is returned when a cloze deletion span does not
	// lie within the card text.
	ErrInvalidClozeSpan = errors.New("cloze span out of range")
)

// CardType discriminates the two kinds of card content.
type CardType string

const (
	CardTypeBasic CardType = "basic"
	CardTypeCloze CardType = "cloze"
)

// CardContent is the semantic content of a card. The fingerprint is computed
// over the concrete content fields plus a type tag, so a basic card and a
// cloze card can never collide.
type CardContent interface {
	Type() CardType
	Fingerprint() Fingerprint
}

// BasicContent is a question/answer card.
type BasicContent struct {
	Question string
	Answer   string
}

func (c BasicContent) Type() CardType { return CardTypeBasic }

func (c BasicContent) Fingerprint() Fingerprint {
	return fingerprintOf([]byte("Basic"), []byte(c.Question), []byte(c.Answer))
}

// ClozeContent is one deletion of a cloze card: the full text without
// brackets plus the byte offsets of the deleted span. Start and End are the
// offsets of the first and last byte of the deletion, inclusive.
type ClozeContent struct {
	Text  string
	Start int
	End   int
}

func (c ClozeContent) Type() CardType { return CardTypeCloze }

func (c ClozeContent) Fingerprint() Fingerprint {
	var start, end [8]byte
	binary.LittleEndian.PutUint64(start[:], uint64(c.Start))
	binary.LittleEndian.PutUint64(end[:], uint64(c.End))
	return fingerprintOf([]byte("Cloze"), []byte(c.Text), start[:], end[:])
}

// FamilyFingerprint identifies the group of sibling deletions generated from
// one source text. All deletions of the same text share it.
func (c ClozeContent) FamilyFingerprint() Fingerprint {
	return fingerprintOf([]byte("Family"), []byte(c.Text))
}

// Deletion returns the deleted span of the text.
func (c ClozeContent) Deletion() string {
	return c.Text[c.Start : c.End+1]
}

// Prompt returns the text with the deletion masked.
func (c ClozeContent) Prompt() string {
	return c.Text[:c.Start] + "[...]" + c.Text[c.End+1:]
}

// Revealed returns the text with the deletion highlighted in brackets.
func (c ClozeContent) Revealed() string {
	return c.Text[:c.Start] + "[" + c.Deletion() + "]" + c.Text[c.End+1:]
}

// Card is a flashcard parsed from a deck file. The fingerprint is cached at
// construction; it is immutable because the content is.
type Card struct {
	deckName    string
	content     CardContent
	fingerprint Fingerprint
}

// NewCard creates a card and computes its fingerprint.
// Returns an error if validation fails.
func NewCard(deckName string, content CardContent) (Card, error) {
	if strings.TrimSpace(deckName) == "" {
		return Card{}, ErrCardDeckEmpty
	}
	if content == nil {
		return Card{}, ErrCardContentNil
	}
	if cloze, ok := content.(ClozeContent); ok {
		if cloze.Start < 0 || cloze.End < cloze.Start || cloze.End >= len(cloze.Text) {
			return Card{}, fmt.Errorf("%w: [%d, %d] in text of %d bytes",
				ErrInvalidClozeSpan, cloze.Start, cloze.End, len(cloze.Text))
		}
	}
	return Card{
		deckName:    deckName,
		content:     content,
		fingerprint: content.Fingerprint(),
	}, nil
}

func (c Card) DeckName() string { return c.deckName }

func (c Card) Content() CardContent { return c.content }

func (c Card) Fingerprint() Fingerprint { return c.fingerprint }

// FamilyFingerprint returns the sibling-group key, if the card has one.
// Only cloze cards have families.
func (c Card) FamilyFingerprint() (Fingerprint, bool) {
	if cloze, ok := c.content.(ClozeContent); ok {
		return cloze.FamilyFingerprint(), true
	}
	return Fingerprint{}, false
}
