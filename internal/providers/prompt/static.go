package prompt

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StaticCaptioner produces a deterministic caption without network calls. It
// serves as the fallback when no OpenAI key is configured so the caption
// endpoint stays operational in local and CI environments.
type StaticCaptioner struct{}

func NewStaticCaptioner() *StaticCaptioner {
	return &StaticCaptioner{}
}

func (s *StaticCaptioner) Caption(ctx context.Context, req CaptionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", synthesisErr("caption cancelled", err)
	}
	c := cases.Title(language.Und)
	platform := strings.TrimSpace(req.Platform)
	if platform == "" {
		platform = "instagram"
	}
	description := strings.TrimSpace(req.EventDescription)
	if description == "" {
		description = "our upcoming event"
	}
	tag := strings.ReplaceAll(c.String(description), " ", "")
	if len(tag) > 40 {
		tag = tag[:40]
	}
	caption := fmt.Sprintf("Join us for %s! Save the date and celebrate with us. #%s #%s", description, tag, c.String(platform))
	return caption, nil
}

var _ Captioner = (*StaticCaptioner)(nil)
