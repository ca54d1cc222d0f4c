package mcpserver

// NoteFormat describes what the graph reads from a note file. Anything else
// in the file is ignored.
const NoteFormat = `# Note Format

A note becomes a graph node only when it carries an identifier. Files
without one are skipped with a warning.

## Org files (.org)

` + "```" + `org
:PROPERTIES:
:ID:       7f9c2b1e-0d4a-4c51-9a8e-3f1d2c6b8a90
:END:
#+title: Reading list
#+filetags: :reading:books:

See [[id:2a1b3c4d-0000-4000-8000-000000000000][Another note]].
` + "```" + `

- The ` + "`:ID:`" + ` must sit in the property drawer before the first heading.
  Drawers under headings describe the heading, not the file.
- ` + "`#+filetags:`" + ` holds colon-separated tags.
- ` + "`[[id:…]]`" + ` links name the target note's identifier.

## Markdown files (.md)

` + "```" + `markdown
---
id: reading-list
title: Reading list
tags: [reading, books]
---

# Reading list

See [[another-note]] or [the other one](another-note.md). #inline-tag
` + "```" + `

- ` + "`id`" + ` in the frontmatter is required; ` + "`title`" + ` falls back to the first
  level-one heading.
- Tags come from the frontmatter list and inline ` + "`#tags`" + `.
- Wikilinks and local Markdown links name target identifiers.

## Implicit links

Any other note's identifier appearing verbatim in the body counts as a
link to it. A note never links to itself.

## Tags and filters

Tag filters match whole tags. With regex matching a pattern must match at
the start of a tag: ` + "`proj`" + ` matches ` + "`project`" + ` but not ` + "`old-project`" + `.
`
