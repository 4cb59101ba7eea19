package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	mjmlgo "github.com/Boostport/mjml-go"

	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

//go:generate mockgen -destination=../mocks/mock_compiler.go -package=pkgmocks github.com/Notifuse/emailbuilder/pkg/export Compiler

// Result is the output of a compilation
type Result struct {
	MJML string `json:"mjml"`
	HTML string `json:"html"`
}

// CompileError is returned when the MJML compiler rejects a document
type CompileError struct {
	Message string `json:"message"`
	MJML    string `json:"mjml,omitempty"`
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("mjml compilation failed: %s", e.Message)
}

// Compiler turns an email into responsive HTML
type Compiler interface {
	Compile(ctx context.Context, email *blocks.Email, opts Options) (*Result, error)
}

type mjmlCompiler struct{}

// NewCompiler returns a Compiler backed by the MJML engine
func NewCompiler() Compiler {
	return mjmlCompiler{}
}

func (mjmlCompiler) Compile(ctx context.Context, email *blocks.Email, opts Options) (*Result, error) {
	return Compile(ctx, email, opts)
}

// Compile converts the email to MJML and compiles it to HTML
func Compile(ctx context.Context, email *blocks.Email, opts Options) (*Result, error) {
	mjml, err := ToMJML(email, opts)
	if err != nil {
		return nil, fmt.Errorf("mjml conversion failed: %w", err)
	}

	htmlResult, err := mjmlgo.ToHTML(ctx, mjml)
	if err != nil {
		return nil, &CompileError{Message: err.Error(), MJML: mjml}
	}

	// The compiler leaves &amp; in URL attributes, which breaks query strings
	htmlResult = decodeHTMLEntitiesInURLAttributes(htmlResult)

	if !opts.UTM.IsZero() {
		htmlResult, err = ApplyUTM(htmlResult, opts.UTM)
		if err != nil {
			return nil, err
		}
	}

	return &Result{MJML: mjml, HTML: htmlResult}, nil
}

var urlAttrRegex = regexp.MustCompile(`((?:href|src|action)=["'])([^"']+)(["'])`)

func decodeHTMLEntitiesInURLAttributes(html string) string {
	return urlAttrRegex.ReplaceAllStringFunc(html, func(match string) string {
		parts := urlAttrRegex.FindStringSubmatch(match)
		if len(parts) != 4 {
			return match
		}

		decoded := parts[2]
		decoded = strings.ReplaceAll(decoded, "&amp;", "&")
		decoded = strings.ReplaceAll(decoded, "&quot;", "\"")
		decoded = strings.ReplaceAll(decoded, "&#39;", "'")
		decoded = strings.ReplaceAll(decoded, "&lt;", "<")
		decoded = strings.ReplaceAll(decoded, "&gt;", ">")

		return parts[1] + decoded + parts[3]
	})
}
