// Package ai provides the optional AI-assisted templating adapter.
//
// The converter consumes the Transformer interface only: given a resource
// kind and its default template text, a transformer may return an
// alternative template text. Any failure (transport error, timeout, rate
// limit, unusable response) degrades to ok=false and the converter keeps
// the deterministic non-AI output. A transform call never raises a fatal
// error up the pipeline.
//
// Client implements Transformer against an HTTPS text-generation inference
// endpoint with a bearer credential. The credential is passed explicitly
// into the constructor, never read from ambient state by this package.
package ai
