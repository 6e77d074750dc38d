// Package section preserves hand-written code across regenerations of a
// generated file.
//
// A generator registers the user sections it will emit, captures the sections
// found in the previous version of the file, and then emits each section while
// writing the new file. Emitted content is the captured body if there was one,
// otherwise the registered default, otherwise nothing.
//
// # Markers
//
// Sections are delimited by comment lines:
//
//	/* USER CODE BEGIN Includes */
//	#include <foo.h>
//	/* USER CODE END Includes */
//
// A line is a marker only if, once surrounding whitespace is trimmed, it is
// exactly one of these forms. Anything between the marker lines is kept byte
// for byte, including blank lines, trailing whitespace and CRLF endings.
//
// Section names are one or more words of letters, digits, '_', '.' or '-'
// separated by single spaces. Regions do not nest: inside a region the first
// end marker with the same name closes it, and a begin marker for any name is
// an error.
//
// # Usage
//
//	reg := section.NewRegistry()
//	reg.DefineWithDefault("Includes", "Additional includes", "#include <stdio.h>\n")
//	reg.Define("Body")
//
//	store := section.NewStore(reg)
//	if _, err := store.CaptureFile("example.h"); err != nil {
//	    return err
//	}
//
//	var buf bytes.Buffer
//	buf.WriteString("#ifndef EXAMPLE_H\n")
//	store.Emit(&buf, "Includes")
//
// Registry and Store are not safe for concurrent use. Generate each file with
// its own pair.
package section
