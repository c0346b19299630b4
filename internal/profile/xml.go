package profile

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/depressurize/internal/autocat"
	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/Veraticus/depressurize/internal/model"
)

// document is the persisted layout. Optional elements are pointers so that absent
// values keep their defaults.
type document struct {
	XMLName        xml.Name           `xml:"profile"`
	Version        string             `xml:"version,attr"`
	SteamID64      *int64             `xml:"steam_id_64"`
	AccountID      string             `xml:"account_id,omitempty"`
	AutoUpdate     *bool              `xml:"auto_update"`
	AutoDownload   *bool              `xml:"auto_download"`
	AutoImport     *bool              `xml:"auto_import"`
	AutoExport     *bool              `xml:"auto_export"`
	LocalUpdate    *bool              `xml:"local_update"`
	WebUpdate      *bool              `xml:"web_update"`
	ExportDiscard  *bool              `xml:"export_discard"`
	AutoIgnore     *bool              `xml:"auto_ignore"`
	IncludeUnknown *bool              `xml:"include_unknown"`
	BypassIgnore   *bool              `xml:"bypass_ignore_on_import"`
	OverwriteNames *bool              `xml:"overwrite_names"`
	IgnoreExternal *bool              `xml:"ignore_external"`
	Shortcuts      *bool              `xml:"include_shortcuts"`
	Games          *gameListNode      `xml:"games"`
	AutoCats       *autocat.List      `xml:"autocats"`
	Filters        []*gamelist.Filter `xml:"Filters>Filter"`
	Exclusions     []string           `xml:"exclusions>exclusion"`
}

type gameListNode struct {
	Games []gameNode `xml:"game"`
}

type gameNode struct {
	Name       *string   `xml:"name"`
	Hidden     *bool     `xml:"hidden"`
	Favorite   *struct{} `xml:"favorite"`
	ID         string    `xml:"id"`
	Source     string    `xml:"source"`
	Category   string    `xml:"category,omitempty"`
	Categories []string  `xml:"categories>category"`
}

// Load reads the profile stored at path.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	p, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

// Read decodes a profile document.
func Read(r io.Reader) (*Profile, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	version, err := strconv.Atoi(strings.TrimSpace(doc.Version))
	if err != nil {
		version = 0
	}

	p := New()
	p.apply(&doc, version)

	p.logger.Debug("Loaded profile",
		"version", version,
		"games", p.Games.Len(),
		"categories", p.Games.CategoryCount(),
		"autocats", len(p.AutoCats),
		"filters", p.Filters.Len(),
		"ignored", len(p.ignored))
	return p, nil
}

func (p *Profile) apply(doc *document, version int) {
	if doc.SteamID64 != nil {
		p.SteamID64 = *doc.SteamID64
	}
	if p.SteamID64 == 0 && doc.AccountID != "" {
		if account, err := strconv.ParseInt(strings.TrimSpace(doc.AccountID), 10, 64); err == nil {
			p.SteamID64 = steamID64FromAccount(account)
		}
	}

	opts := &p.Options
	if version < 3 {
		setBool(&opts.AutoUpdate, doc.AutoDownload)
	} else {
		setBool(&opts.AutoUpdate, doc.AutoUpdate)
	}
	setBool(&opts.AutoImport, doc.AutoImport)
	setBool(&opts.AutoExport, doc.AutoExport)
	setBool(&opts.LocalUpdate, doc.LocalUpdate)
	setBool(&opts.WebUpdate, doc.WebUpdate)
	setBool(&opts.ExportDiscard, doc.ExportDiscard)
	setBool(&opts.AutoIgnore, doc.AutoIgnore)
	setBool(&opts.IncludeUnknown, doc.IncludeUnknown)
	setBool(&opts.BypassIgnoreOnImport, doc.BypassIgnore)
	setBool(&opts.OverwriteNames, doc.OverwriteNames)
	if version < 2 {
		if doc.IgnoreExternal != nil {
			opts.IncludeShortcuts = !*doc.IgnoreExternal
		}
	} else {
		setBool(&opts.IncludeShortcuts, doc.Shortcuts)
	}

	for _, raw := range doc.Exclusions {
		if id, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			p.ignored[id] = struct{}{}
		}
	}

	if doc.Games != nil {
		for i := range doc.Games.Games {
			p.addGame(&doc.Games.Games[i], version)
		}
	}

	if doc.AutoCats != nil {
		p.AutoCats = *doc.AutoCats
	}

	for _, f := range doc.Filters {
		if err := p.Filters.Add(f); err != nil {
			p.logger.Warn("Skipping filter", "name", f.Name, "error", err)
		}
	}
}

func (p *Profile) addGame(node *gameNode, version int) {
	id, err := strconv.Atoi(strings.TrimSpace(node.ID))
	if err != nil {
		p.logger.Warn("Skipping game with invalid id", "id", node.ID)
		return
	}

	source := model.ParseSource(node.Source)
	if source.IsCatalog() && p.IsIgnored(id) {
		return
	}

	name := ""
	if node.Name != nil {
		name = *node.Name
	}
	game, err := p.Games.AddGame(id, name)
	if err != nil {
		p.logger.Warn("Skipping game", "id", id, "error", err)
		return
	}
	game.Source = source
	if node.Hidden != nil {
		game.Hidden = *node.Hidden
	}

	var names []string
	if version < 1 {
		if node.Category != "" {
			names = append(names, node.Category)
		}
		if node.Favorite != nil {
			game.SetFavorite(true)
		}
	} else {
		names = node.Categories
	}

	for _, catName := range names {
		c, err := p.Games.GetCategory(catName)
		if err != nil {
			continue
		}
		game.AddCategory(c)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Save writes the profile to path, replacing any existing file atomically.
// An empty path saves to the path the profile was loaded from.
func (p *Profile) Save(path string) error {
	if path == "" {
		path = p.Path
	}
	if path == "" {
		return fmt.Errorf("%w: no path to save to", ErrInvalidProfile)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".profile-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	w := bufio.NewWriter(tmp)
	if err := p.Write(w); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := errors.Join(w.Flush(), tmp.Sync(), tmp.Close()); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}

	p.Path = path
	p.logger.Info("Saved profile", "path", path, "games", p.Games.Len())
	return nil
}

// Write encodes the profile in the current format.
func (p *Profile) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(p.document()); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (p *Profile) document() *document {
	opts := p.Options
	steamID := p.SteamID64
	doc := &document{
		Version:        strconv.Itoa(Version),
		SteamID64:      &steamID,
		AutoUpdate:     &opts.AutoUpdate,
		AutoImport:     &opts.AutoImport,
		AutoExport:     &opts.AutoExport,
		LocalUpdate:    &opts.LocalUpdate,
		WebUpdate:      &opts.WebUpdate,
		ExportDiscard:  &opts.ExportDiscard,
		AutoIgnore:     &opts.AutoIgnore,
		IncludeUnknown: &opts.IncludeUnknown,
		BypassIgnore:   &opts.BypassIgnoreOnImport,
		OverwriteNames: &opts.OverwriteNames,
		Shortcuts:      &opts.IncludeShortcuts,
		Games:          &gameListNode{},
		Filters:        p.Filters.All(),
	}

	autocats := p.AutoCats
	if autocats == nil {
		autocats = autocat.List{}
	}
	doc.AutoCats = &autocats

	for _, g := range p.Games.Games() {
		if g.IsShortcut() && !opts.IncludeShortcuts {
			continue
		}
		hidden := g.Hidden
		node := gameNode{
			ID:         strconv.Itoa(g.ID()),
			Source:     g.Source.String(),
			Hidden:     &hidden,
			Categories: g.CategoryNames(),
		}
		if g.Name != "" {
			name := g.Name
			node.Name = &name
		}
		doc.Games.Games = append(doc.Games.Games, node)
	}

	for _, id := range p.Ignored() {
		doc.Exclusions = append(doc.Exclusions, strconv.Itoa(id))
	}
	return doc
}
