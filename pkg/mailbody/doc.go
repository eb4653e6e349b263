// Package mailbody renders the HTML bodies of outgoing reminder emails.
//
// Templates are compiled once at package init and rendering is pure, so
// the package is safe for concurrent use. User-supplied fields are
// escaped by html/template; links additionally pass a scheme check so a
// stored payload can never smuggle a javascript: URL into the message.
package mailbody
