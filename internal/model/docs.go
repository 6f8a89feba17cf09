// package model contains the request and response types that flow through
// a dispatch chain. they are re-exported by the top level package so that
// IDEs and code editors could pick them up without importing internals.
//
// a [Request] is only ever produced by [Normalize] and is treated as
// read-only afterwards; middlewares that want to alter it work on a
// [Request.Clone].
package model
