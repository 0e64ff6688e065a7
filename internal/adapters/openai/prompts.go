package openai

// Built-in prompt templates. Deployments can override them with files in
// the prompts directory; the tokens below are replaced per brief.

const queriesSystemPrompt = `You are a music curator helping a listener discover music they have not heard before. You answer with a single JSON object and nothing else.`

const defaultQueriesTemplate = `{{listener}} has been listening to the following this week ({{source_week}}).

Top artists:
{{artists}}

Top tracks:
{{tracks}}

Genres: {{genres}}

Suggest up to {{max_queries}} search queries for finding NEW music for next week ({{target_week}}). The listener wants discovery, not repetition: lean toward artists and scenes adjacent to this taste, deep cuts, and the occasional wildcard. Avoid queries that would mostly surface the artists listed above.

Answer with JSON in exactly this shape:
{"queries": [{"query": "<search text>", "strategy": "<similar-artist|genre-adjacent|specific-track|left-field>"}]}

Strategies:
- similar-artist: artists close to the listed ones, but not them
- genre-adjacent: neighboring genres and scenes
- specific-track: a concrete track or release worth surfacing
- left-field: a stretch pick outside the comfort zone`

const descriptionSystemPrompt = `You write one-line playlist descriptions. Keep it under 200 characters, no hashtags, no emoji. You answer with a single JSON object and nothing else.`

const defaultDescriptionTemplate = `Write a playlist description for {{listener}}'s weekly discovery mix for {{target_week}}. It was built from their {{source_week}} listening: {{artists}}. Genres: {{genres}}.

Answer with JSON in exactly this shape:
{"description": "<text>"}`
