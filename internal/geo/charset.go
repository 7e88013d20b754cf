package geo

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// attributeDecoder returns a function converting raw DBF attribute bytes
// to UTF-8, honoring the shapefile's .cpg code page declaration. Without a
// declaration, valid UTF-8 passes through and anything else is read as
// Windows-1252, the code page most US state extracts are written in.
func attributeDecoder(shpPath string) func(string) string {
	cpgPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".cpg"

	enc := charmap.Windows1252
	var declared encoding.Encoding
	if data, err := os.ReadFile(cpgPath); err == nil {
		declared = lookupCodePage(string(data))
		if declared == nil {
			zap.L().Warn("geo: unknown code page, assuming UTF-8",
				zap.String("component", "geo.loader"),
				zap.String("cpg", strings.TrimSpace(string(data))),
			)
		}
	}

	return func(v string) string {
		if declared == nil && utf8.ValidString(v) {
			return v
		}
		e := declared
		if e == nil {
			e = enc
		}
		out, err := e.NewDecoder().String(v)
		if err != nil {
			return v
		}
		return out
	}
}

// lookupCodePage maps a .cpg declaration to an encoding. UTF-8 maps to nil
// so attributes pass through untouched.
func lookupCodePage(name string) encoding.Encoding {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "utf-8", "utf8", "65001":
		return nil
	}
	if strings.TrimLeft(name, "0123456789") == "" {
		name = "windows-" + name
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil
	}
	return e
}
