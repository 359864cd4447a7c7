// Package widget defines the capability set the dashboard core uses to
// change what the user sees, and the declarative figure configuration it
// hands to the chart layer.
//
// The renderer and the command serializer only ever talk to a [Set]; they
// never know whether the widgets live in a browser page, a terminal or a
// test recorder.
package widget
