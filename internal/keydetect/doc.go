// Package keydetect determines the musical key of an audio file and maps it
// to the notation DJ software expects.
//
// The detector composes two narrow ports: a Decoder that turns a file into an
// interleaved sample buffer, and an Estimator that classifies the buffer into
// one of 24 keys (or a silence sentinel). Both ports can be replaced with
// synthetic implementations in tests, so the mapping tables and the detection
// flow are exercised without touching real codecs.
//
// Key labels use the sharp-spelled convention ("A#", never "Bb") because
// downstream tag matching depends on those exact strings. Camelot wheel labels
// pair each major key with its relative minor under one number, "B" for major
// and "A" for minor.
package keydetect
