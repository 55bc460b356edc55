package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sitemapLimit = 500

type SEOHandler struct {
	ama     AMA
	siteURL string
	logger  *zap.Logger
}

func NewSEOHandler(ama AMA, siteURL string, logger *zap.Logger) *SEOHandler {
	return &SEOHandler{ama: ama, siteURL: strings.TrimRight(siteURL, "/"), logger: logger}
}

func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /login
Disallow: /signup
Disallow: /logout
Disallow: /auth/
Disallow: /sessions/new
Disallow: /api/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the index page and the most recent sessions. Sessions
// from today change hourly; older ones are closed.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	now := h.ama.Today()
	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{{
			Loc:        h.siteURL + "/sessions",
			LastMod:    now.Format("2006-01-02"),
			ChangeFreq: "hourly",
			Priority:   "1.0",
		}},
	}

	sessions, err := h.ama.RecentSessions(c.Request.Context(), sitemapLimit)
	if err != nil {
		h.logger.Error("sitemap sessions", zap.Error(err))
	}
	for _, s := range sessions {
		entry := sitemapURL{
			Loc:        h.siteURL + "/sessions/" + s.ID,
			LastMod:    s.UpdatedAt.Format("2006-01-02"),
			ChangeFreq: "never",
			Priority:   "0.6",
		}
		if now.Sub(s.CreatedAt) < 24*time.Hour {
			entry.ChangeFreq = "hourly"
			entry.Priority = "0.8"
		}
		set.URLs = append(set.URLs, entry)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		renderFailure(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
