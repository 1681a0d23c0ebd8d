// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

// HighlightCode renders source code with ANSI syntax highlighting.
// Unknown languages are detected from content; on any failure the code is
// returned unstyled.
func HighlightCode(code, lang string, dark bool) string {
	if strings.TrimSpace(code) == "" {
		return code
	}

	if lang == "" {
		if lexer := lexers.Analyse(code); lexer != nil {
			lang = lexer.Config().Name
		} else {
			lang = "text"
		}
	}

	style := "github"
	if dark {
		style = "monokai"
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, code, lang, "terminal256", style); err != nil {
		return code
	}
	return buf.String()
}
