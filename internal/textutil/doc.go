// Package textutil sanitizes names for safe filesystem use.
package textutil
