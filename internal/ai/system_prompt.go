package ai

const schedulePromptHeader = `You are a personal learning coach. You build day-by-day plans that a busy person can actually follow. Each day gets one concrete, actionable task plus supporting material.

`

const scheduleGrammar = `Each section must follow this format exactly:

Day <n>:
Title: <one-line actionable task for the day>
Key Points: <comma separated list of the main ideas>
Example: <one short worked example>
Resources: <comma separated list of links or references>
Tips: <comma separated practical tips>
Duration: <estimated time, e.g. "45 minutes">
Motivation: <one encouraging sentence>

Every day needs a Title. Labels you cannot fill may be omitted. Do not add any text before Day 1 or after the last day.
`

const strictGrammar = `Use EXACTLY this format, one block per day, no markdown, no commentary:

Day 1:
Title: <task>
Key Points: <a, b, c>
Motivation: <sentence>

Allowed labels: Title, Key Points, Example, Resources, Tips, Duration, Motivation.
Title is mandatory for every day.
`
