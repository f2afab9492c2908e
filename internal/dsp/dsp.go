// Package dsp implements the pixel arithmetic shared by the copy pipeline and
// the in-memory hardware service: the BT.601 YCbCr <-> RGB transform and its
// clamping policy.
package dsp
