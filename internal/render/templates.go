package render

// Section fragment templates. The three sidebar layouts share the item data
// shape; only structure and which slots show differ. Value slots arrive
// pre-rendered as HTML because level rows and linkified text are markup.
const sidebarSectionTpl = `
{{- define "sidebar-section" -}}
<section class="cv-section sidebar-section" data-section="{{.Name}}">
  <h3 class="section-title">{{.Label}}</h3>
  <div class="section-items {{.View}}">
  {{- range .Items}}
    {{- if eq $.View "compact-view"}}
    <div class="section-item-container compact-view"{{if .Tooltip}} title="{{.Tooltip}}"{{end}}>
      {{.Icon}}
      <span class="item-name">{{.Name}}</span>
    </div>
    {{- else}}
    <div class="section-item-container {{$.View}}">
      {{.Icon}}
      <div class="item-body">
        <span class="item-name">{{.Name}}</span>
        {{- if .HasValue}}
        <span class="item-value">{{.Value}}</span>
        {{- end}}
      </div>
    </div>
    {{- end}}
  {{- end}}
  </div>
</section>
{{- end -}}`

const mainSectionTpl = `
{{- define "main-section" -}}
<section class="cv-section main-section" data-section="{{.Name}}">
  <h3 class="section-title">{{.Label}}</h3>
  <div class="section-items main-items {{.ContainerClass}}">
  {{- range .Items}}
    <div class="main-item {{$.ItemClass}}">
      {{- if .HasIcon}}
      {{.Icon}}
      {{- end}}
      <div class="main-item-body">
        <div class="main-item-header">
          <span class="item-title">{{.Title}}</span>
          {{- if .Date}}
          <span class="item-date">{{.Date}}</span>
          {{- end}}
        </div>
        {{- if .Description}}
        <p class="item-description">{{.Description}}</p>
        {{- end}}
      </div>
    </div>
  {{- end}}
  </div>
</section>
{{- end -}}`

const textSectionTpl = `
{{- define "text-section" -}}
<section class="cv-section text-section" data-section="{{.Name}}">
  {{- if .Label}}
  <h3 class="section-title">{{.Label}}</h3>
  {{- end}}
  <div class="section-text">{{.Text}}</div>
</section>
{{- end -}}`

const timelineTpl = `
{{- define "timeline" -}}
<section class="cv-section timeline-section" data-section="timeline">
  <div class="timeline">
  {{- range .Events}}
    <div class="timeline-event">
      <span class="timeline-icon">{{.Icon}}</span>
      <span class="timeline-year">{{.Year}}</span>
      <span class="timeline-title">{{.Title}}</span>
    </div>
  {{- end}}
  </div>
</section>
{{- end -}}`
