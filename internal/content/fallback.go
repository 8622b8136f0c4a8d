package content

// Built-in copies served when no markdown file overrides them. Body is
// already-sanitized static HTML.
var fallbackPages = map[string]Page{
	"size-guide": {
		Slug:    "size-guide",
		Title:   "Size Guide",
		Summary: "Garment measurements for every size we stock.",
		Body: `<p>All measurements are taken flat across the chest, in centimetres. If you are between sizes, we recommend sizing up for workwear worn over layers.</p>
  <h2>Polos and t-shirts</h2>
  <ul>
    <li>S: 48&ndash;50cm chest</li>
    <li>M: 51&ndash;53cm chest</li>
    <li>L: 54&ndash;57cm chest</li>
    <li>XL: 58&ndash;61cm chest</li>
    <li>2XL: 62&ndash;66cm chest</li>
  </ul>
  <h2>Hoodies and softshells</h2>
  <p>Outer layers run roughly one size generous to allow for movement. Check the size chart image on each product page for garment-specific figures.</p>`,
	},
	"faq": {
		Slug:    "faq",
		Title:   "Frequently Asked Questions",
		Summary: "Logo setup, embroidery, and ordering questions answered.",
		Body: `<h2>Why is there a one-time setup charge?</h2>
  <p>A newly uploaded logo is digitized into a stitch file before it can be embroidered. The &pound;20 setup fee covers that work once; reordering with the same logo never pays it again.</p>
  <h2>Can I reuse a logo from a previous order?</h2>
  <p>Yes. Choose &ldquo;use previous logo&rdquo; during customization and the saved artwork is applied with only the per-garment application fee.</p>
  <h2>How do bundles work?</h2>
  <p>Each bundle slot has a fixed number of garments to fill. Pick a product, colours, and sizes per slot until every slot shows complete, then add your logo once for the whole bundle.</p>`,
	},
	"delivery": {
		Slug:    "delivery",
		Title:   "Delivery Information",
		Summary: "Shipping options, costs, and timescales.",
		Body: `<p>Orders are dispatched once embroidery is complete, typically within 5 working days.</p>
  <ul>
    <li>Standard: &pound;4.95, free on orders of &pound;100 or more. 3&ndash;5 working days after dispatch.</li>
    <li>Expedited: &pound;6.95. 1&ndash;2 working days after dispatch.</li>
    <li>International: &pound;9.95. 7&ndash;14 working days depending on destination.</li>
  </ul>
  <p>Tracking details are emailed when your order ships.</p>`,
	},
}
