package crawler

import (
	"bytes"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catalogsync/internal/model"
)

// O site já usou mais de uma classe para o menu de marcas; todas são lidas.
const (
	brandMenuSelector   = ".brandmenu-v2 li a, .brandmenu li a, .brandsmenu li a"
	productItemSelector = "#review-body .makers li"
	nextPageSelector    = `.nav-pages a[title="Next page"]`
	specTableSelector   = "#specs-list table"
	specTitleSelector   = ".specs-phone-name-title"
	specPhotoSelector   = ".specs-photo-main img"
)

var brandCodeRe = regexp.MustCompile(`-(\d+)\.php$`)

func ParseDocument(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// ExtractBrands lê o menu de marcas da página inicial. Um documento sem
// nenhuma marca costuma ser página de bloqueio, por isso vira erro.
func ExtractBrands(doc *goquery.Document) ([]model.Brand, error) {
	var brands []model.Brand
	seen := make(map[string]bool)

	doc.Find(brandMenuSelector).Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		segment := href[strings.LastIndex(href, "/")+1:]
		id := strings.TrimSuffix(segment, ".php")
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		code := model.DefaultBrandCode
		if m := brandCodeRe.FindStringSubmatch(segment); m != nil {
			code = m[1]
		}

		brands = append(brands, model.Brand{
			ID:        id,
			CleanID:   model.BaseSlug(id),
			BrandCode: code,
			Name:      strings.TrimSpace(a.Text()),
			URL:       href,
		})
	})

	if len(brands) == 0 {
		return nil, &ExtractionError{Document: "brand list", Reason: "no brand menu entries"}
	}
	return brands, nil
}

// ExtractProducts lê os itens de uma página de listagem. Itens sem link ou
// sem imagem são ignorados.
func ExtractProducts(doc *goquery.Document, brandID string) []model.Product {
	var products []model.Product

	doc.Find(productItemSelector).Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		img := li.Find("img").First()
		if a.Length() == 0 || img.Length() == 0 {
			return
		}
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}

		p := model.Product{
			ID:      strings.TrimSuffix(href, path.Ext(href)),
			Name:    strings.TrimSpace(li.Find("strong").Text()),
			URL:     href,
			Image:   strings.TrimSpace(img.AttrOr("src", "")),
			BrandID: brandID,
		}
		// srcset: "url-2x.jpg 2x, ..." -> primeira URL
		if fields := strings.Fields(img.AttrOr("srcset", "")); len(fields) > 0 {
			p.ImageRetina = strings.TrimSuffix(fields[0], ",")
		}
		products = append(products, p)
	})

	return products
}

func HasNextPage(doc *goquery.Document) bool {
	return doc.Find(nextPageSelector).Length() > 0
}

// ExtractSpecifications lê as tabelas de especificação e acrescenta a
// categoria General. O nome do produto é o único campo obrigatório.
func ExtractSpecifications(doc *goquery.Document, fallbackImage string) (model.Specifications, error) {
	specs := make(model.Specifications)

	doc.Find(specTableSelector).Each(func(_ int, table *goquery.Selection) {
		category := strings.TrimSpace(table.Find("th").Text())
		if category == "" {
			return
		}
		attrs, ok := specs[category]
		if !ok {
			attrs = make(model.SpecCategory)
			specs[category] = attrs
		}

		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			key := strings.TrimSpace(row.Find(".ttl").Text())
			value := strings.TrimSpace(row.Find(".nfo").Text())
			if key != "" && value != "" {
				attrs[key] = value
			}
		})
	})

	image := strings.TrimSpace(doc.Find(specPhotoSelector).First().AttrOr("src", ""))
	if image == "" {
		image = fallbackImage
	}
	specs[model.GeneralCategory] = model.SpecCategory{
		"Name":  strings.TrimSpace(doc.Find(specTitleSelector).First().Text()),
		"Image": image,
	}

	if specs.Name() == "" {
		return nil, &ExtractionError{Document: "specifications", Reason: "product name not found"}
	}
	return specs, nil
}
