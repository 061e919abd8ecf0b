package mission

import (
	"archive/zip"
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	dommission "github.com/kailas-cloud/hoverpoint/internal/domain/mission"
)

// Archive entry names inside a KMZ.
const (
	TemplateEntry = "wpmz/template.kml"
	WaylinesEntry = "wpmz/waylines.wpml"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("wpmz").Funcs(template.FuncMap{"xml": escapeXML}).ParseFS(templateFS, "templates/*.tmpl"),
)

// Builder renders missions into DJI WPMZ documents and KMZ archives.
type Builder struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewBuilder creates a Builder. A nil logger disables logging.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger, now: time.Now}
}

type documentData struct {
	Author     string
	CreateTime int64
	UpdateTime int64
	TakeoffRef string
	Speed      string
	Distance   string
	Duration   string
	Waypoints  []waypointData
}

type waypointData struct {
	Index     int
	Longitude string
	Latitude  string
	Altitude  string
	Height    string
	Heading   string
	Pitch     string
}

// TemplateKML renders wpmz/template.kml.
func (b *Builder) TemplateKML(m dommission.Mission) ([]byte, error) {
	out, err := b.render("template.kml.tmpl", m)
	if err != nil {
		return nil, err
	}
	if ce := b.logger.Check(zap.DebugLevel, "Mission rendered"); ce != nil {
		ce.Write(zap.String("mission_id", m.ID.String()), zap.Int("waypoints", len(m.Waypoints)))
		for i, w := range m.Waypoints {
			b.logger.Debug("Waypoint",
				zap.Int("index", i),
				zap.String("dms", geo.FormatLonLatDMS(w.Longitude, w.Latitude)),
				zap.Float64("altitude", w.Altitude),
			)
		}
	}
	return out, nil
}

// WaylinesWPML renders wpmz/waylines.wpml.
func (b *Builder) WaylinesWPML(m dommission.Mission) ([]byte, error) {
	return b.render("waylines.wpml.tmpl", m)
}

// KMZ renders both documents and packs them into a deflated zip archive.
func (b *Builder) KMZ(m dommission.Mission) ([]byte, error) {
	kml, wpml, err := b.documents(m)
	if err != nil {
		return nil, err
	}
	return b.pack(m, kml, wpml)
}

// WriteKMZ writes the archive as dir/name next to an expanded dir/wpmz folder
// and returns the archive path.
func (b *Builder) WriteKMZ(m dommission.Mission, dir, name string) (string, error) {
	kml, wpml, err := b.documents(m)
	if err != nil {
		return "", err
	}
	archive, err := b.pack(m, kml, wpml)
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(filepath.Join(dir, "wpmz"), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	files := map[string][]byte{
		filepath.Join(dir, filepath.FromSlash(TemplateEntry)): kml,
		filepath.Join(dir, filepath.FromSlash(WaylinesEntry)): wpml,
		filepath.Join(dir, name):                              archive,
	}
	for path, data := range files {
		if err = os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // mission files are not secret
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}

	path := filepath.Join(dir, name)
	b.logger.Info("Mission archive written",
		zap.String("mission_id", m.ID.String()),
		zap.String("path", path),
		zap.Int("waypoints", len(m.Waypoints)),
	)
	return path, nil
}

func (b *Builder) documents(m dommission.Mission) (kml, wpml []byte, err error) {
	if kml, err = b.TemplateKML(m); err != nil {
		return nil, nil, err
	}
	if wpml, err = b.WaylinesWPML(m); err != nil {
		return nil, nil, err
	}
	return kml, wpml, nil
}

func (b *Builder) render(name string, m dommission.Mission) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate mission: %w", err)
	}

	data := b.data(m)
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) data(m dommission.Mission) documentData {
	created := m.Created
	if created.IsZero() {
		created = b.now()
	}

	wps := make([]waypointData, len(m.Waypoints))
	for i, w := range m.Waypoints {
		wps[i] = waypointData{
			Index:     i,
			Longitude: formatFloat(w.Longitude),
			Latitude:  formatFloat(w.Latitude),
			Altitude:  formatFloat(w.Altitude),
			Height:    formatFloat(w.Height),
			Heading:   formatFloat(w.Heading),
			Pitch:     formatFloat(w.Pitch),
		}
	}

	return documentData{
		Author:     m.Author,
		CreateTime: created.UnixMilli(),
		UpdateTime: created.UnixMilli(),
		TakeoffRef: m.TakeoffRef.String(),
		Speed:      formatFloat(m.Speed),
		Distance:   strconv.FormatFloat(m.Distance(), 'f', 1, 64),
		Duration:   strconv.FormatFloat(m.Duration(), 'f', 1, 64),
		Waypoints:  wps,
	}
}

func (b *Builder) pack(m dommission.Mission, kml, wpml []byte) ([]byte, error) {
	modified := m.Created
	if modified.IsZero() {
		modified = b.now()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range []struct {
		name string
		data []byte
	}{
		{TemplateEntry, kml},
		{WaylinesEntry, wpml},
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", e.name, err)
		}
		if _, err = w.Write(e.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeXML(s string) (string, error) {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return "", err //nolint:wrapcheck // template func
	}
	return sb.String(), nil
}
