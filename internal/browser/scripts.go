package browser

const glyphHolderID = "__html2pptx_glyph"

// fontsReadyJS resolves once every web font in use has loaded or failed.
const fontsReadyJS = `() => document.fonts.ready.then(() => true)`

// describeJS reads everything the walker needs from an element in one call.
// Own text keeps <br> as a newline and ignores descendant elements.
const describeJS = `function () {
	const r = this.getBoundingClientRect();
	const cs = window.getComputedStyle(this);
	let own = '';
	for (const n of this.childNodes) {
		if (n.nodeType === Node.TEXT_NODE) {
			own += n.textContent;
		} else if (n.nodeName === 'BR') {
			own += '\n';
		}
	}
	return {
		tag: this.tagName.toLowerCase(),
		classes: Array.from(this.classList),
		x: r.left + window.scrollX,
		y: r.top + window.scrollY,
		width: r.width,
		height: r.height,
		style: {
			fontFamily: cs.fontFamily,
			fontSize: cs.fontSize,
			fontWeight: cs.fontWeight,
			fontStyle: cs.fontStyle,
			color: cs.color,
			backgroundColor: cs.backgroundColor,
			borderRadius: cs.borderTopLeftRadius,
			boxShadow: cs.boxShadow,
			textAlign: cs.textAlign,
		},
		ownText: own,
	};
}`

// glyphSetupJS clones the element at scale into a holder at the page
// origin and hides everything else so the page paints nothing behind it.
const glyphSetupJS = `function (scale) {
	const cs = window.getComputedStyle(this);
	const size = parseFloat(cs.fontSize) || 16;
	const holder = document.createElement('div');
	holder.id = '` + glyphHolderID + `';
	holder.style.cssText = 'position:absolute;left:0;top:0;z-index:2147483647;' +
		'display:inline-block;line-height:1;padding:0;margin:0;background:transparent;';
	const clone = this.cloneNode(true);
	clone.style.fontSize = (size * scale) + 'px';
	clone.style.color = cs.color;
	clone.style.backgroundColor = 'transparent';
	clone.style.boxShadow = 'none';
	clone.style.margin = '0';
	clone.style.width = 'auto';
	clone.style.height = 'auto';
	holder.appendChild(clone);
	document.body.appendChild(holder);
	const sheet = document.createElement('style');
	sheet.id = '` + glyphHolderID + `_style';
	sheet.textContent = 'html, body { background: transparent !important; } ' +
		'body > *:not(#` + glyphHolderID + `) { visibility: hidden !important; }';
	document.head.appendChild(sheet);
	return true;
}`

const glyphCleanupJS = `() => {
	for (const id of ['` + glyphHolderID + `', '` + glyphHolderID + `_style']) {
		const n = document.getElementById(id);
		if (n) n.remove();
	}
	return true;
}`

// backgroundSetupJS makes the element's text transparent and hides the
// given selectors inside it.
const backgroundSetupJS = `function (hide) {
	this.setAttribute('data-html2pptx-bg', '');
	const sheet = document.createElement('style');
	sheet.id = '__html2pptx_bg_style';
	let css = '[data-html2pptx-bg], [data-html2pptx-bg] * {' +
		' color: transparent !important; text-shadow: none !important;' +
		' -webkit-text-stroke: 0 !important; caret-color: transparent !important; }';
	if (hide) {
		css += ' [data-html2pptx-bg] :is(' + hide + ') { visibility: hidden !important; }';
	}
	sheet.textContent = css;
	document.head.appendChild(sheet);
	return true;
}`

const backgroundCleanupJS = `function () {
	this.removeAttribute('data-html2pptx-bg');
	const n = document.getElementById('__html2pptx_bg_style');
	if (n) n.remove();
	return true;
}`
