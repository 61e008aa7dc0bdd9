package routes

import (
	"fmt"
	"html"
)

// The app is API-first; these pages are the minimal browser shell the
// frontend assets mount onto. Flash messages are injected server-side.
func renderPage(title, message string) string {
	flash := ""
	if message != "" {
		flash = fmt.Sprintf(`<p class="flash">%s</p>`, html.EscapeString(message))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="pl">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<h1>%s</h1>
%s
<div id="app"></div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(title), flash)
}
