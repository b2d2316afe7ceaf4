package mcpserver

// TagDisplayRules describes how basetag shows tags, so that LLM consumers can
// predict the pill a tag will render as.
const TagDisplayRules = `# basetag Tag Display Rules

basetag replaces the text of every tag pill with the tag's basename: the last
segment after the final ` + "`/`" + `.

| Tag | Pill |
|-----|------|
| ` + "`#a/b/c`" + ` | ` + "`c`" + ` |
| ` + "`#project`" + ` | ` + "`project`" + ` |
| ` + "`a/b/`" + ` | (empty) |

## Where pills appear

1. **Body hashtags** (` + "`#area/work`" + `) in reading and editing views. Hashtags inside
   code spans or fenced code blocks are not tags.
2. **Frontmatter tags**: values of the ` + "`tags`" + ` or ` + "`tag`" + ` keys (any case), either a
   YAML list or a space-separated scalar.
3. **Property panel**: the pills shown for the ` + "`tags`" + ` property.

## Editing

While the cursor touches a tag (one character either side of an inline tag,
or the position just past a frontmatter tag), the full path is shown so it can
be edited. Moving away restores the pill.

## Link targets

A rewritten pill still links to its full tag: ` + "`href=\"#\" + tag text`" + `, with the
full tag in ` + "`data-tag`" + `.
`
