// Package render builds the HTML fragments attached to sequence messages.
//
// A request fragment has PATH, HEADERS and BODY sections; a response
// fragment has RESPONSE, HEADERS and BODY sections. Sections are plain
// <section> elements with an <h3> title so that report templates can style
// them without knowing anything about HTTP:
//
//	<section>
//	    <h3>HEADERS</h3>
//	    <table>
//	<tr><td>Content-Type</td><td>application/json</td></tr>
//	    </table>
//	</section>
//
// Header names and values are HTML-escaped. Body text is expected to be
// escaped already (see package body).
package render
