package encoder

import "net/url"

const fallbackSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="1200" height="800" viewBox="0 0 1200 800">
  <defs>
    <linearGradient id="g" x1="0" y1="0" x2="1" y2="1">
      <stop offset="0" stop-color="#111"/>
      <stop offset="1" stop-color="#000"/>
    </linearGradient>
  </defs>
  <rect width="1200" height="800" fill="url(#g)"/>
  <rect x="80" y="80" width="1040" height="640" rx="48" fill="#0a0a0a" stroke="#f59e0b" stroke-opacity="0.35" stroke-width="4"/>
  <text x="600" y="390" fill="#f59e0b" font-family="ui-monospace, Menlo, Consolas, monospace" font-size="34" text-anchor="middle">Image could not load</text>
  <text x="600" y="440" fill="#a1a1aa" font-family="ui-monospace, Menlo, Consolas, monospace" font-size="18" text-anchor="middle">Check the file path or upload a new one</text>
</svg>`

// FallbackImage is shown in place of a card image that is missing or fails
// to load.
var FallbackImage = "data:image/svg+xml," + url.PathEscape(fallbackSVG)

// ImageOrFallback returns src, or FallbackImage when src is empty.
func ImageOrFallback(src string) string {
	if src == "" {
		return FallbackImage
	}
	return src
}
