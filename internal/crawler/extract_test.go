package crawler

import (
	"errors"
	"testing"

	"catalogsync/internal/model"
)

func TestExtractBrands(t *testing.T) {
	html := `<html><body>
		<div class="brandmenu-v2"><ul>
			<li><a href="apple-48.php">Apple</a></li>
			<li><a>No href</a></li>
			<li><a href="samsung-phones-9.php"> Samsung </a></li>
		</ul></div>
		<div class="brandsmenu"><ul>
			<li><a href="/makers/acme.php">Acme</a></li>
			<li><a href="apple-48.php">Apple</a></li>
		</ul></div>
	</body></html>`

	doc, err := ParseDocument([]byte(html))
	if err != nil {
		t.Fatal(err)
	}
	brands, err := ExtractBrands(doc)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]model.Brand{
		"apple-48":         {ID: "apple-48", CleanID: "apple", BrandCode: "48", Name: "Apple", URL: "apple-48.php"},
		"samsung-phones-9": {ID: "samsung-phones-9", CleanID: "samsung", BrandCode: "9", Name: "Samsung", URL: "samsung-phones-9.php"},
		"acme":             {ID: "acme", CleanID: "acme", BrandCode: "0", Name: "Acme", URL: "/makers/acme.php"},
	}
	if len(brands) != len(want) {
		t.Fatalf("got %d brands, want %d: %+v", len(brands), len(want), brands)
	}
	for _, b := range brands {
		if w, ok := want[b.ID]; !ok || w != b {
			t.Errorf("brand %q = %+v, want %+v", b.ID, b, w)
		}
	}
}

func TestExtractBrandsEmptyPageFails(t *testing.T) {
	doc, _ := ParseDocument([]byte(`<html><body><p>Too many requests</p></body></html>`))
	_, err := ExtractBrands(doc)
	var ee *ExtractionError
	if !errors.As(err, &ee) {
		t.Errorf("err = %v, want *ExtractionError", err)
	}
}

func TestExtractProductsSkipsIncompleteItems(t *testing.T) {
	html := listingPage(false,
		productItem("apple_iphone_15-12559", "iPhone 15"),
		`<li><a href="apple_ipad-1.php"><strong>iPad</strong></a></li>`,
		productItem("apple_iphone_15_pro-12557", "iPhone 15 Pro"),
	)
	doc, _ := ParseDocument([]byte(html))

	products := ExtractProducts(doc, "apple-48")
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	p := products[0]
	if p.ID != "apple_iphone_15-12559" || p.Name != "iPhone 15" || p.URL != "apple_iphone_15-12559.php" {
		t.Errorf("unexpected product: %+v", p)
	}
	if p.Image != "https://cdn.test/apple_iphone_15-12559.jpg" || p.ImageRetina != "https://cdn.test/apple_iphone_15-12559-2x.jpg" {
		t.Errorf("unexpected images: %q %q", p.Image, p.ImageRetina)
	}
	if p.BrandID != "apple-48" {
		t.Errorf("BrandID = %q", p.BrandID)
	}
}

func TestExtractProductsWithoutSrcset(t *testing.T) {
	doc, _ := ParseDocument([]byte(listingPage(false, `<li><a href="x-1.php"><img src="x.jpg"><strong>X</strong></a></li>`)))
	products := ExtractProducts(doc, "b")
	if len(products) != 1 || products[0].ImageRetina != "" {
		t.Errorf("unexpected: %+v", products)
	}
}

func TestHasNextPage(t *testing.T) {
	with, _ := ParseDocument([]byte(listingPage(true)))
	without, _ := ParseDocument([]byte(listingPage(false)))
	if !HasNextPage(with) || HasNextPage(without) {
		t.Error("next page detection wrong")
	}
}

func TestExtractSpecifications(t *testing.T) {
	html := specPage("Apple iPhone 15",
		specTable("Network", [2]string{"2G bands", "GSM 850 / 900"}),
		specTable("Comms",
			[2]string{"WLAN", "Wi-Fi 802.11 a/b/g/n/ac/6"},
			[2]string{"Bluetooth 5.3, A2DP", "Yes"},
			[2]string{"Radio", ""},
		),
		`<table><tr><td class="ttl">orphan</td><td class="nfo">row</td></tr></table>`,
	)
	doc, _ := ParseDocument([]byte(html))

	specs, err := ExtractSpecifications(doc, "fallback.jpg")
	if err != nil {
		t.Fatal(err)
	}

	if got := specs["Network"]["2G bands"]; got != "GSM 850 / 900" {
		t.Errorf("Network/2G bands = %q", got)
	}
	if _, ok := specs["Network"]["header"]; ok {
		t.Error("header row should be skipped")
	}
	if specs["Comms"]["Bluetooth 5.3, A2DP"] != "Yes" {
		t.Error("keys with dots and commas must stay opaque")
	}
	if _, ok := specs["Comms"]["Radio"]; ok {
		t.Error("empty value should be skipped")
	}
	if len(specs) != 3 {
		t.Errorf("categories = %d, want 3 (Network, Comms, General)", len(specs))
	}
	if specs.Name() != "Apple iPhone 15" || specs["General"]["Image"] != "https://cdn.test/main.jpg" {
		t.Errorf("General = %+v", specs["General"])
	}
}

func TestExtractSpecificationsImageFallback(t *testing.T) {
	html := `<html><body><h1 class="specs-phone-name-title">X</h1><div id="specs-list"></div></body></html>`
	doc, _ := ParseDocument([]byte(html))

	specs, err := ExtractSpecifications(doc, "known.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if specs["General"]["Image"] != "known.jpg" {
		t.Errorf("Image = %q, want fallback", specs["General"]["Image"])
	}
}

func TestExtractSpecificationsRequiresName(t *testing.T) {
	html := specPage("", specTable("Display", [2]string{"Size", "6.1 inches"}))
	doc, _ := ParseDocument([]byte(html))

	_, err := ExtractSpecifications(doc, "x.jpg")
	var ee *ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want *ExtractionError", err)
	}
}
