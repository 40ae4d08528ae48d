package demoserver

import (
	"bytes"

	"github.com/raysh454/rawdata/internal/render"
)

// PageVersion is one rendition of a page.
type PageVersion struct {
	Body        string
	ContentType string
	Headers     map[string]string
}

// PageDefinition holds all versions of a single page.
type PageDefinition struct {
	Path        string
	Description string
	Versions    map[int]PageVersion
}

// GetAllPages returns all demo page definitions. The PDF page is rendered
// once per call.
func GetAllPages() ([]PageDefinition, error) {
	report, err := reportPDF()
	if err != nil {
		return nil, err
	}
	return []PageDefinition{
		homePage(),
		checkoutPage(),
		articlePage(),
		settingsPage(),
		report,
	}, nil
}

// ===== HOME =====

func homePage() PageDefinition {
	return PageDefinition{
		Path:        "/",
		Description: "Landing page with navigation links",
		Versions: map[int]PageVersion{
			1: {Body: `<!DOCTYPE html>
<html>
<head><title>Demo Store</title></head>
<body>
    <header>
        <nav>
            <a href="/">Home</a>
            <a href="/checkout">Checkout</a>
            <a href="/article">Blog</a>
            <a href="/settings">Settings</a>
            <a href="/report.pdf">Annual report</a>
        </nav>
    </header>
    <main>
        <h1>Welcome to the Demo Store</h1>
        <p>Everything here exists to be scanned. Nothing ships.</p>
        <button id="newsletter">Subscribe</button>
    </main>
    <footer><a href="/privacy">Privacy</a></footer>
</body>
</html>`},
			2: {Body: `<!DOCTYPE html>
<html>
<head><title>Demo Store - Sale</title></head>
<body>
    <header>
        <nav>
            <a href="/">Home</a>
            <a href="/checkout">Checkout</a>
            <a href="/article">Blog</a>
            <a href="/settings">Settings</a>
            <a href="/report.pdf">Annual report</a>
        </nav>
    </header>
    <div role="dialog" aria-modal="true" class="modal">
        <h2>Summer sale</h2>
        <p>Take 20% off everything until Sunday.</p>
        <button>Close</button>
    </div>
    <main>
        <h1>Welcome to the Demo Store</h1>
        <p>Everything here exists to be scanned. Nothing ships.</p>
        <button id="newsletter">Subscribe</button>
    </main>
</body>
</html>`},
		},
	}
}

// ===== CHECKOUT =====

func checkoutPage() PageDefinition {
	return PageDefinition{
		Path:        "/checkout",
		Description: "Checkout form with inputs, a select and a pay button",
		Versions: map[int]PageVersion{
			1: {Body: `<!DOCTYPE html>
<html>
<head><title>Checkout</title></head>
<body>
    <main>
        <h1>Checkout</h1>
        <p>Total due today is $42.50 including tax.</p>
        <form action="/pay" method="post" aria-label="Payment">
            <label for="name">Name</label>
            <input id="name" type="text" placeholder="Full name" required>
            <label for="email">Email</label>
            <input id="email" type="email" placeholder="you@example.com">
            <select name="shipping" aria-label="Shipping">
                <option>Standard</option>
                <option selected>Express</option>
            </select>
            <input type="checkbox" id="terms" checked> <label for="terms">I accept the terms</label>
            <input type="hidden" name="csrf" value="demo-token">
            <button type="submit">Pay $42.50</button>
        </form>
    </main>
</body>
</html>`},
			2: {Body: `<!DOCTYPE html>
<html>
<head><title>Checkout</title></head>
<body>
    <main>
        <h1>Checkout</h1>
        <p>Total due today is $42.50 including tax.</p>
        <p class="error" role="alert">Your card was declined.</p>
        <form action="/pay" method="post" aria-label="Payment">
            <input id="name" type="text" value="Ada Lovelace" readonly>
            <input id="email" type="email" value="ada@example.com" readonly>
            <select name="shipping" aria-label="Shipping" disabled>
                <option selected>Express</option>
            </select>
            <input type="checkbox" id="terms" checked>
            <button type="submit" disabled>Pay $42.50</button>
            <button type="button">Try another card</button>
        </form>
    </main>
</body>
</html>`},
		},
	}
}

// ===== ARTICLE =====

func articlePage() PageDefinition {
	return PageDefinition{
		Path:        "/article",
		Description: "Long-form content with headings, a table and code blocks",
		Versions: map[int]PageVersion{
			1: {Body: `<!DOCTYPE html>
<html>
<head><title>Shipping Rates Explained</title></head>
<body>
    <article>
        <h1>Shipping Rates Explained</h1>
        <p>Orders over $50 ship free within the continental US. Everything else is charged by weight.</p>
        <h2>Rates</h2>
        <table>
            <tr><th>Weight</th><th>Standard</th><th>Express</th></tr>
            <tr><td>Under 1 kg</td><td>$4.99</td><td>$12.99</td></tr>
            <tr><td>1 to 5 kg</td><td>$9.99</td><td>$24.99</td></tr>
        </table>
        <h2>Tracking orders from the API</h2>
        <p>Call the orders endpoint with your token.</p>
        <pre><code>curl -H "Authorization: Bearer $TOKEN" https://api.example.com/v1/orders/1234</code></pre>
        <h2>Support</h2>
        <p>Write to support@example.com or call +1 555 010 0199.</p>
        <div hidden><p>Internal note: rates change next quarter.</p></div>
    </article>
</body>
</html>`},
		},
	}
}

// ===== SETTINGS =====

func settingsPage() PageDefinition {
	return PageDefinition{
		Path:        "/settings",
		Description: "Account settings with expanded, collapsed and hidden controls",
		Versions: map[int]PageVersion{
			1: {Body: `<!DOCTYPE html>
<html>
<head><title>Settings</title></head>
<body>
    <main>
        <h1>Account settings</h1>
        <button aria-expanded="true" aria-controls="profile">Profile</button>
        <section id="profile">
            <input type="text" value="ada" aria-label="Username" readonly>
            <input type="radio" name="theme" value="light" checked aria-label="Light theme">
            <input type="radio" name="theme" value="dark" aria-label="Dark theme">
        </section>
        <button aria-expanded="false">Billing</button>
        <button style="display:none">Delete account</button>
        <a href="/logout" aria-hidden="true">Log out</a>
        <a href="/help">Help</a>
    </main>
</body>
</html>`},
		},
	}
}

// ===== REPORT =====

func reportPDF() (PageDefinition, error) {
	var buf bytes.Buffer
	err := render.TextPDF(&buf,
		"Demo Store Annual Report\n\nRevenue grew 12% to $1.2M. Orders shipped: 48,200.",
		"Outlook\n\nWe expect express shipping to pass standard shipping by volume next year.",
	)
	if err != nil {
		return PageDefinition{}, err
	}
	return PageDefinition{
		Path:        "/report.pdf",
		Description: "Two page text PDF",
		Versions: map[int]PageVersion{
			1: {Body: buf.String(), ContentType: "application/pdf"},
		},
	}, nil
}
