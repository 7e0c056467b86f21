package web

import "html/template"

const indexTemplate = `{{define "index"}}<!DOCTYPE html>
<html>
<head><title>Job Listings</title></head>
<body>
<h2>Job listings</h2>
<form method="get" action="/">
<input type="text" name="search" placeholder="Search..." value="{{.Search}}">
<button type="submit">Search</button>
<a href="/">Clear Filters</a>
</form>
<div style="margin-top: 20px;">
<a href="/scrape"><button type="button">Start Scraping HN Jobs</button></a>
</div>
<div style="margin-top: 20px;">
<p>{{len .Jobs}} jobs match the criteria.</p>
</div>
<div style="margin-top: 20px;">
{{if .Jobs}}<table border="1" cellpadding="5" cellspacing="0">
<thead>
<tr><th>ID</th><th>Job Text</th><th>Status</th><th>Inserted At</th></tr>
</thead>
<tbody>
{{range .Jobs}}<tr>
<td><a href="/job/{{.Id}}">{{.Id}}</a></td>
<td>{{.Html}}</td>
<td>{{.Status}}</td>
<td>{{.InsertedAt}}</td>
</tr>
{{end}}</tbody>
</table>{{else}}<p>No jobs found matching criteria.</p>{{end}}
</div>
</body>
</html>{{end}}`

const jobTemplate = `{{define "job"}}<!DOCTYPE html>
<html>
<head><title>Job Details</title></head>
<body>
<h2>Job Details</h2>
<a href="/">Back to Listings</a>
<div style="margin-top: 20px;">
<p><strong>Job Text:</strong></p>
<div style="border: 1px solid #ccc; padding: 10px;">
{{.Html}}
</div>
<p><strong>Inserted At:</strong> {{.InsertedAt}}</p>
<p><strong>Updated At:</strong> {{.UpdatedAt}}</p>
<p><strong>Applied At:</strong> {{.AppliedAt}}</p>
<p><strong>Status:</strong> {{.Status}}</p>
<p><strong>HN User:</strong> {{if .UserURL}}<a href="{{.UserURL}}" target="_blank">{{.Author}}</a>{{else}}N/A{{end}}</p>
<p><strong>HN ID:</strong> {{if .ItemURL}}<a href="{{.ItemURL}}" target="_blank">{{.ExternalId}}</a>{{else}}N/A{{end}}</p>
<form method="post" action="/job/{{.Id}}/status">
<input type="text" name="status" placeholder="applied, rejected, ..." value="{{.Status}}">
<button type="submit">Update Status</button>
</form>
</div>
</body>
</html>{{end}}`

const scrapeTemplate = `{{define "scrape"}}<!DOCTYPE html>
<html>
<head><title>Scrape Jobs</title></head>
<body>
<h2>Scraping Status</h2>
<p>{{.Message}}</p>
<div style="margin-top: 20px;">
<a href="/"><button type="button">Back to Home</button></a>
</div>
</body>
</html>{{end}}`

const healthTemplate = `{{define "health"}}<html>
<head><title>Health Check</title></head>
<body>
<h1>OK</h1>
</body>
</html>{{end}}`

func loadTemplates() *template.Template {
	t := template.Must(template.New("index").Parse(indexTemplate))
	template.Must(t.Parse(jobTemplate))
	template.Must(t.Parse(scrapeTemplate))
	template.Must(t.Parse(healthTemplate))
	return t
}
