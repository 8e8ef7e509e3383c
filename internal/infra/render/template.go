package render

// reportTemplate is the fixed templated-mode layout. Palette colors arrive
// as CSS custom properties; images are already base64 data URIs.
const reportTemplate = `<!DOCTYPE html>
<html lang="tr">
<head>
<meta charset="utf-8">
<title>{{ .ProjectName }} — Yatırımcı Raporu</title>
<style>
:root {
  --primary: {{ .Palette.Primary }};
  --secondary: {{ .Palette.Secondary }};
  --accent: {{ .Palette.Accent }};
  --background: {{ .Palette.Background }};
  --text: {{ .Palette.Text }};
}
body {
  font-family: "Helvetica Neue", Arial, sans-serif;
  color: var(--text);
  background: var(--background);
  margin: 0;
  line-height: 1.55;
}
header.cover {
  background: var(--primary);
  color: #fff;
  padding: 48px 40px;
}
header.cover h1 { margin: 0 0 8px; font-size: 28px; }
header.cover .date { color: var(--accent); font-size: 14px; }
header.cover img.hero { max-width: 100%; margin-top: 24px; border-radius: 4px; }
main { padding: 32px 40px; }
main p { margin: 0 0 12px; text-align: justify; }
h2.section {
  color: var(--primary);
  border-bottom: 2px solid var(--secondary);
  padding-bottom: 4px;
  margin-top: 28px;
}
figure {
  margin: 20px 0;
  page-break-inside: avoid;
}
figure img { max-width: 100%; border: 1px solid var(--secondary); border-radius: 4px; }
figcaption { font-size: 12px; color: var(--secondary); margin-top: 6px; }
</style>
</head>
<body>
<header class="cover">
  <h1>{{ .ProjectName | upper }} YATIRIMCI RAPORU</h1>
  <div class="date">{{ .ReportDate }}</div>
  {{- if .HeroURI }}
  <img class="hero" src="{{ .HeroURI }}" alt="{{ .ProjectName }}">
  {{- end }}
</header>
<main>
{{- range .Paragraphs }}
<p>{{ . }}</p>
{{- end }}
{{- range .Groups }}
<h2 class="section">{{ .Component }}</h2>
{{- range .Images }}
<figure>
  <img src="{{ .DataURI }}" alt="{{ .Filename }}">
  <figcaption>{{ .Component }} — {{ .Filename }}</figcaption>
</figure>
{{- end }}
{{- end }}
</main>
</body>
</html>
`
