package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// mapFetcher serve documentos a partir de um mapa URL -> HTML e registra as
// chamadas. URLs desconhecidas falham como um 404 esgotado.
type mapFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func newMapFetcher() *mapFetcher {
	return &mapFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func (f *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if body, ok := f.pages[url]; ok {
		return []byte(body), nil
	}
	return nil, &FetchError{URL: url, Attempts: 3, StatusCode: 404, Err: errors.New("http status 404")}
}

func (f *mapFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

func homePage(anchors ...string) string {
	return `<html><body><div class="brandmenu-v2"><ul>` + strings.Join(anchors, "") + `</ul></div></body></html>`
}

func brandAnchor(href, name string) string {
	return fmt.Sprintf(`<li><a href="%s">%s</a></li>`, href, name)
}

func listingPage(next bool, items ...string) string {
	nav := ""
	if next {
		nav = `<div class="nav-pages"><strong>1</strong><a href="#" title="Next page" class="prevnextbutton"></a></div>`
	}
	return `<html><body><div id="review-body"><div class="makers"><ul>` +
		strings.Join(items, "") + `</ul></div></div>` + nav + `</body></html>`
}

func productItem(id, name string) string {
	return fmt.Sprintf(`<li><a href="%[1]s.php"><img src="https://cdn.test/%[1]s.jpg" srcset="https://cdn.test/%[1]s-2x.jpg 2x"><strong><span>%[2]s</span></strong></a></li>`, id, name)
}

func specPage(title string, tables ...string) string {
	titleHTML := ""
	if title != "" {
		titleHTML = `<h1 class="specs-phone-name-title">` + title + `</h1>`
	}
	return `<html><body>` + titleHTML +
		`<div class="specs-photo-main"><a href="#"><img src="https://cdn.test/main.jpg"></a></div>` +
		`<div id="specs-list">` + strings.Join(tables, "") + `</div></body></html>`
}

func specTable(category string, rows ...[2]string) string {
	var sb strings.Builder
	sb.WriteString(`<table><tr><th rowspan="9">` + category + `</th><td class="ttl">header</td><td class="nfo">row</td></tr>`)
	for _, r := range rows {
		sb.WriteString(`<tr><td class="ttl">` + r[0] + `</td><td class="nfo">` + r[1] + `</td></tr>`)
	}
	sb.WriteString(`</table>`)
	return sb.String()
}
