package chat

import (
	"fmt"
	"time"

	"github.com/antoniostano/fitbot/internal/affiliate"
	"github.com/antoniostano/fitbot/internal/fitment"
	"github.com/antoniostano/fitbot/internal/format"
	"github.com/antoniostano/fitbot/internal/linkify"
	"github.com/antoniostano/fitbot/internal/observability"
)

type injected struct {
	text  string
	links int
}

// render turns the model text into the displayed reply. A stage that panics
// is logged and skipped, so the worst case is the unlinked model text.
func (s *Service) render(userText, modelText string, vehicle fitment.Profile, country string) (string, int) {
	items := safely(s, "query_items", []affiliate.QueryItem(nil), func() []affiliate.QueryItem {
		return affiliate.BuildQueryItems(userText, modelText, vehicle, s.maxLinks)
	})

	start := time.Now()
	market := s.marketplaces.Resolve(country)
	links := make([]linkify.Item, 0, len(items))
	for _, it := range items {
		links = append(links, linkify.Item{Name: it.Display, URL: s.marketplaces.SearchURL(it.Query, market)})
	}
	out := safely(s, "link_inject", injected{text: modelText}, func() injected {
		text, n := linkify.Inject(modelText, links)
		return injected{text: text, links: n}
	})
	s.metrics.ObserveTurnStage(observability.StageLinks, time.Since(start))

	start = time.Now()
	reply := safely(s, "format", out.text, func() string {
		return format.ToLines(out.text)
	})
	s.metrics.ObserveTurnStage(observability.StageFormat, time.Since(start))
	return reply, out.links
}

func safely[T any](s *Service, stage string, fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("stage", stage).Str("panic", fmt.Sprint(r)).Msg("reply stage failed; using safe default")
			s.metrics.ObserveTurnIndicator("stage_panic_" + stage)
			out = fallback
		}
	}()
	return fn()
}
