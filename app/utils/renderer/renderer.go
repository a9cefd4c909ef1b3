// renderer/renderer.go
package renderer

import (
	"github.com/unrolled/render"
)

func New(isDevelopment bool) *render.Render {
	return render.New(render.Options{
		IndentJSON:    isDevelopment,
		IsDevelopment: isDevelopment,
		UnEscapeHTML:  true,
		// no templates are served, the SPA is built separately
		DisableHTTPErrorRendering: true,
	})
}
