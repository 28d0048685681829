// Package bridge converts record sets to and from their textual JSON form.
// Output is stable: form types are sorted and fields follow schema order, so
// serialising the same set twice yields identical bytes.
package bridge
