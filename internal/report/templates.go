package report

// reportTemplate wraps converted markdown in a self-contained HTML page.
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body {
	font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
	max-width: 880px;
	margin: 0 auto;
	padding: 2rem 1.5rem;
	color: #1a1a2e;
	line-height: 1.6;
}
h1 { border-bottom: 2px solid #e0e0e8; padding-bottom: 0.4rem; }
h2 { margin-top: 2rem; color: #2a2a4a; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #d8d8e0; padding: 0.45rem 0.7rem; text-align: left; }
th { background: #f4f4f8; }
tr:nth-child(even) td { background: #fafafc; }
strong { color: #16213e; }
ul { padding-left: 1.3rem; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`
