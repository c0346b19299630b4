package autocat

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
)

// constructors maps every persisted type id to a constructor returning defaults.
var constructors = map[Type]func(name string) AutoCat{
	TypeGenre:     func(n string) AutoCat { return NewGenre(n) },
	TypeYear:      func(n string) AutoCat { return NewYear(n) },
	TypeUserScore: func(n string) AutoCat { return NewUserScore(n) },
	TypeTags:      func(n string) AutoCat { return NewTags(n) },
	TypeFlags:     func(n string) AutoCat { return NewFlags(n) },
	TypeManual:    func(n string) AutoCat { return NewManual(n) },
	TypeCurator:   func(n string) AutoCat { return NewCurator(n) },
	TypeGroup:     func(n string) AutoCat { return NewGroup(n) },
	TypeHltb:      func(n string) AutoCat { return NewHltb(n) },
	TypeLanguage:  func(n string) AutoCat { return NewLanguage(n) },
	TypeVrSupport: func(n string) AutoCat { return NewVrSupport(n) },
	TypeName:      func(n string) AutoCat { return NewName(n) },
	TypeDevPub:    func(n string) AutoCat { return NewDevPub(n) },
}

// New creates a rule of type t with default settings.
func New(t Type, name string) (AutoCat, error) {
	ctor, ok := constructors[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return ctor(name), nil
}

// Types returns every known type id, sorted.
func Types() []Type {
	out := make([]Type, 0, len(constructors))
	for t := range constructors {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Decode reads one rule from the element opened by start. The element name selects
// the variant; fields missing from the element keep the variant's defaults.
func Decode(d *xml.Decoder, start xml.StartElement) (AutoCat, error) {
	ac, err := New(Type(start.Name.Local), "")
	if err != nil {
		if skipErr := d.Skip(); skipErr != nil {
			return nil, errors.Join(err, skipErr)
		}
		return nil, err
	}
	if err := d.DecodeElement(ac, &start); err != nil {
		return nil, fmt.Errorf("decode %s: %w", start.Name.Local, err)
	}
	if ac.Meta().Name == "" {
		ac.Meta().Name = string(ac.Type())
	}
	return ac, nil
}

// Encode writes ac as an element named by its type id.
func Encode(e *xml.Encoder, ac AutoCat) error {
	start := xml.StartElement{Name: xml.Name{Local: string(ac.Type())}}
	if err := e.EncodeElement(ac, start); err != nil {
		return fmt.Errorf("encode %s %q: %w", ac.Type(), ac.Meta().Name, err)
	}
	return nil
}

// Marshal encodes a single rule.
func Marshal(ac AutoCat) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := Encode(enc, ac); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a single rule.
func Unmarshal(data []byte) (AutoCat, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("read autocat: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return Decode(d, start)
		}
	}
}

// List is an ordered set of rules that persists as a sequence of typed elements.
// Elements with an unknown type are skipped.
type List []AutoCat

// MarshalXML implements xml.Marshaler.
func (l List) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, ac := range l {
		if err := Encode(e, ac); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML implements xml.Unmarshaler.
func (l *List) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			ac, err := Decode(d, t)
			if errors.Is(err, ErrUnknownType) {
				continue
			}
			if err != nil {
				return err
			}
			*l = append(*l, ac)
		case xml.EndElement:
			return nil
		}
	}
}

// Lookup returns the rule with the given name.
func (l List) Lookup(name string) (AutoCat, bool) {
	for _, ac := range l {
		if ac.Meta().Name == name {
			return ac, true
		}
	}
	return nil, false
}

// Names returns the rule names in order.
func (l List) Names() []string {
	out := make([]string, len(l))
	for i, ac := range l {
		out[i] = ac.Meta().Name
	}
	return out
}

// Clone deep-copies every rule.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, ac := range l {
		out[i] = ac.Clone()
	}
	return out
}

// DefaultList returns the rule set a new profile starts with.
func DefaultList() List {
	genre := NewGenre("Genre")
	genre.MaxCategories = 0

	score := NewUserScore("User Score")
	score.Prefix = "Score - "
	score.Rules = SteamRules()

	hltb := NewHltb("HLTB")
	hltb.Prefix = "HLTB - "
	hltb.IncludeUnknown = true
	hltb.Rules = []HltbRule{
		{Name: "0-5 hours", MinHours: 0, MaxHours: 5, TimeType: TimeMain},
		{Name: "5-10 hours", MinHours: 5, MaxHours: 10, TimeType: TimeMain},
		{Name: "10-20 hours", MinHours: 10, MaxHours: 20, TimeType: TimeMain},
		{Name: "20-50 hours", MinHours: 20, MaxHours: 50, TimeType: TimeMain},
		{Name: "50+ hours", MinHours: 50, MaxHours: 0, TimeType: TimeMain},
	}

	year := NewYear("Year")
	year.Prefix = "Year - "

	tags := NewTags("Tags")
	tags.Prefix = "Tag - "

	flags := NewFlags("Flags")

	return List{genre, flags, tags, year, score, hltb}
}
