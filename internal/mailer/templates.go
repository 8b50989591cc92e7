package mailer

// Email bodies are Liquid templates so ops can tweak copy without
// touching send logic. All of them render to simple HTML.

const registrationAdminTemplate = `
<h2>New event registration</h2>
<p><strong>Event:</strong> {{ event_title }} ({{ price_label }})</p>
<p><strong>Name:</strong> {{ name }}</p>
<p><strong>Email:</strong> {{ email }}</p>
{% if phone != "" %}<p><strong>Phone:</strong> {{ phone }}</p>{% endif %}
{% if organization != "" %}<p><strong>Organization:</strong> {{ organization }}</p>{% endif %}
{% if message != "" %}<p><strong>Message:</strong> {{ message }}</p>{% endif %}
<p>Submitted {{ submitted_at }}.</p>
`

const registrationCustomerTemplate = `
<p>Hi {{ name }},</p>
<p>Thank you for registering for <strong>{{ event_title }}</strong>. We have received your registration.</p>
{% if paid %}
<p>The registration fee is {{ price_label }}. You will be taken through payment next; your spot is confirmed once payment completes.</p>
{% else %}
<p>This event is FREE, no payment is required. Your spot is reserved.</p>
{% endif %}
<p>We look forward to seeing you there!</p>
`

const paymentConfirmedCustomerTemplate = `
<p>Hi {{ name }},</p>
<p>Your payment for <strong>{{ event_title }}</strong> has been received. Your registration is confirmed.</p>
<p>Payment reference: {{ reference }}</p>
<p>See you at the event!</p>
`

const paymentConfirmedAdminTemplate = `
<h2>Payment received</h2>
<p><strong>Event:</strong> {{ event_title }}</p>
<p><strong>Customer:</strong> {{ name }} ({{ email }})</p>
<p><strong>Reference:</strong> {{ reference }}</p>
`

const contactAdminTemplate = `
<h2>New contact form submission</h2>
<p><strong>Name:</strong> {{ name }}</p>
<p><strong>Email:</strong> {{ email }}</p>
{% if phone != "" %}<p><strong>Phone:</strong> {{ phone }}</p>{% endif %}
<p><strong>Subject:</strong> {{ subject }}</p>
<p>{{ message }}</p>
{% if source_url != "" %}<p>Sent from {{ source_url }}</p>{% endif %}
`

const contactAckTemplate = `
<p>Hi {{ name }},</p>
<p>Thanks for getting in touch. We have received your message and will reply within one business day.</p>
<p>Your message:</p>
<blockquote>{{ message }}</blockquote>
`

const newsletterConfirmTemplate = `
<p>Hi{% if name != "" %} {{ name }}{% endif %},</p>
<p>Please confirm your subscription to our newsletter by clicking the link below:</p>
<p><a href="{{ confirm_url }}">Confirm my subscription</a></p>
<p>If you did not request this, you can safely ignore this email.</p>
`
