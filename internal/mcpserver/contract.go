package mcpserver

// NoteFormatContract describes the Markdown note format read by the inbox
// importer and written by the exporter.
const NoteFormatContract = `# Tagnote Note Format

Files dropped into the inbox directory are imported as notes, and
` + "`" + `tagnote export` + "`" + ` writes notes back out, using this structure.

## Structure

` + "```" + `markdown
---
title: Groceries            # optional, falls back to the first "# " heading
date: 2024-03-01            # optional, YYYY-MM-DD; defaults to the file's modification day
tags:                       # optional, a YAML list or "home, errands"
  - home
  - errands
---

Body text in plain Markdown. Inline #hashtags are added to the tag set.
` + "```" + `

## Rules

1. The ` + "`" + `---` + "`" + ` fence must be the first line of the file when frontmatter is used.
2. Tag names are matched exactly and are case-sensitive: ` + "`" + `Home` + "`" + ` and ` + "`" + `home` + "`" + ` are two tags.
3. A tag listed twice is linked once.
4. Files must be UTF-8 and end in ` + "`" + `.md` + "`" + `.
5. Files that cannot be parsed are moved to ` + "`" + `rejected/` + "`" + ` inside the inbox.
`
