package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/richtext"
)

// Post renders a full post detail page.
func Post(cfg SiteConfig, page PostPage) templ.Component {
	p := page.Post
	meta := PageMeta{
		Title:       p.Title,
		Description: p.Subtitle,
		URL:         BuildURL(cfg.URL, "post", p.Slug),
		OGType:      "article",
		Image:       p.BannerURL,
		NoIndex:     page.Preview,
	}
	return Layout(cfg, meta, BlogPostingJsonLD(cfg, p), templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if p.BannerURL != "" {
			h.raw(`<img class="banner"`)
			h.attr("src", p.BannerURL)
			h.raw(` alt="banner"/>`)
		}
		h.raw(`<main class="main"><article class="article"><h1 class="title">`)
		h.text(p.Title)
		h.raw(`</h1><div class="info"><time`)
		if !p.FirstPublished.IsZero() {
			h.attr("datetime", p.FirstPublished.Format("2006-01-02"))
		}
		h.raw(`>`)
		h.text(FormatDate(p.FirstPublished))
		h.raw(`</time><span class="author">`)
		h.text(p.Author)
		h.raw(`</span><span class="reading-time">`, strconv.Itoa(p.ReadingTime), ` min</span></div>`)
		if p.Edited() {
			h.raw(`<p class="edited">`)
			h.text("* editado em " + FormatDate(p.LastPublished) + ", às " + FormatClock(p.LastPublished))
			h.raw(`</p>`)
		}

		h.raw(`<div class="content">`)
		for _, s := range p.Content {
			h.raw(`<section><h2 class="heading">`)
			h.text(s.Heading)
			h.raw(`</h2>`)
			if h.err != nil {
				return h.err
			}
			if err := richtext.Component(s.Body).Render(ctx, w); err != nil {
				return err
			}
			h.raw(`</section>`)
		}
		h.raw(`</div>`)

		h.raw(`<nav class="footer-buttons"><div>`)
		if page.Prev != nil {
			h.raw(`<a rel="prev"`)
			h.attr("href", PostPath(page.Prev.Slug))
			h.raw(`><p class="footer-title">`)
			h.text(page.Prev.Title)
			h.raw(`</p><p class="footer-text">Post anterior</p></a>`)
		}
		h.raw(`</div><div>`)
		if page.Next != nil {
			h.raw(`<a rel="next"`)
			h.attr("href", PostPath(page.Next.Slug))
			h.raw(`><p class="footer-title">`)
			h.text(page.Next.Title)
			h.raw(`</p><p class="footer-text">Próximo post</p></a>`)
		}
		h.raw(`</div></nav>`)

		if cfg.CommentsRepo != "" && !page.Preview {
			h.raw(`<script src="https://utteranc.es/client.js"`)
			h.attr("repo", cfg.CommentsRepo)
			h.raw(` issue-term="pathname" theme="github-dark" crossorigin="anonymous" async></script>`)
		}
		h.raw(`</article>`)
		if page.Preview {
			h.raw(`<aside class="exit-preview"><a href="/api/exit-preview">Sair do modo Preview</a></aside>`)
		}
		h.raw(`</main>`)
		return h.err
	}))
}

// Loading renders the placeholder shown while a post that was not prerendered
// is still being generated.
func Loading(cfg SiteConfig) templ.Component {
	meta := PageMeta{Title: "Carregando...", NoIndex: true, Refresh: 5}
	return Layout(cfg, meta, "", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<main class="main"><div class="loading">Carregando...</div></main>`)
		return err
	}))
}

// NotFound renders the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	meta := PageMeta{Title: "Página não encontrada", NoIndex: true}
	return Layout(cfg, meta, "", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<main class="main"><h1>404</h1><p>Página não encontrada.</p><a href="/">Voltar para o início</a></main>`)
		return err
	}))
}

// ServerError renders the 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	meta := PageMeta{Title: "Erro", NoIndex: true}
	return Layout(cfg, meta, "", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<main class="main"><h1>Algo deu errado</h1><p>Tente novamente em instantes.</p></main>`)
		return err
	}))
}
