package render

import (
	"bytes"
	"fmt"
	"html/template"
)

// htmlTemplate wraps a rendered SVG call graph in a standalone page with
// zoom controls. The SVG is inlined so the file can be opened or mailed
// around without a sidecar.
var htmlTemplate = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Profile Visualization - {{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        h1 { color: #333; }
        .controls {
            margin: 20px 0; padding: 10px; background: white;
            border-radius: 5px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        button {
            margin: 5px; padding: 8px 15px; background: #4CAF50; color: white;
            border: none; border-radius: 3px; cursor: pointer;
        }
        button:hover { background: #45a049; }
        #svg-container {
            background: white; border-radius: 5px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1); padding: 20px; overflow: auto;
        }
        #svg-container svg { width: 100%; height: auto; }
    </style>
</head>
<body>
    <h1>Profile Visualization: {{.Title}}</h1>
    <div class="controls">
        <button onclick="zoomIn()">Zoom In</button>
        <button onclick="zoomOut()">Zoom Out</button>
        <button onclick="resetZoom()">Reset</button>
    </div>
    <div id="svg-container">{{.SVG}}</div>

    <script>
        let currentScale = 1;
        const svg = document.querySelector('#svg-container svg');

        function zoomIn() { currentScale *= 1.2; applyZoom(); }
        function zoomOut() { currentScale /= 1.2; applyZoom(); }
        function resetZoom() { currentScale = 1; applyZoom(); }

        function applyZoom() {
            if (svg) {
                svg.style.transform = 'scale(' + currentScale + ')';
                svg.style.transformOrigin = 'top left';
            }
        }
    </script>
</body>
</html>
`))

// WrapHTML embeds SVG bytes into an interactive standalone HTML page.
func WrapHTML(title string, svg []byte) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Title string
		SVG   template.HTML
	}{
		Title: title,
		SVG:   template.HTML(svg),
	}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render HTML viewer: %w", err)
	}
	return buf.Bytes(), nil
}
