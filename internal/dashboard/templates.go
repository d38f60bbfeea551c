package dashboard

import "html/template"

type indexData struct {
	Actors       []actorOption
	Reconcilable []actorOption
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>OpenClimate Data Viewer</title>
<style>
  body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
  section { margin-bottom: 3rem; }
  select { min-width: 16rem; }
  button { margin-left: 0.5rem; }
</style>
</head>
<body>
<h1>OpenClimate Data Viewer</h1>
<p>Visualize reported emissions data against national pledges.</p>

<section>
  <h2>Time series of country emissions</h2>
  <p>Display Annex 1 country emissions from the national inventory, with pledge target levels.</p>
  <form action="/charts/emissions" method="get">
    <select name="actors" multiple size="8">
      {{range .Actors}}<option value="{{.ID}}">{{.Name}}</option>
      {{end}}
    </select>
    <button type="submit">Plot emissions</button>
  </form>
</section>

<section>
  <h2>Do subnational emissions add up?</h2>
  <p>Compare the sum of subnational inventories to the national total.</p>
  <form action="/charts/reconciliation" method="get">
    <select name="actor">
      {{range .Reconcilable}}<option value="{{.ID}}">{{.Name}}</option>
      {{end}}
    </select>
    <button type="submit">National vs subnational</button>
  </form>
  <form action="/charts/difference" method="get">
    <select name="actor">
      {{range .Reconcilable}}<option value="{{.ID}}">{{.Name}}</option>
      {{end}}
    </select>
    <button type="submit">Plot difference</button>
  </form>
</section>
</body>
</html>
`))
