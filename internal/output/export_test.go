package output

// RenderText exposes the transcript renderer to external tests.
var RenderText = renderText
