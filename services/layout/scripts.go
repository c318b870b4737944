package layout

import (
	"crypto/sha256"
	"encoding/base64"
)

// fitScript shrinks overflowing pages to their locked height. It waits for web
// fonts because font swaps change the measured height. Pages already marked
// with the fit-scaled attribute are left alone, which is also how export turns
// this script off.
const fitScript = `(function () {
  var SCALED = '` + AttrFitScaled + `';
  var WRAPPER = '` + AttrFitWrapper + `';

  function fitPage(page) {
    if (page.getAttribute(SCALED) === 'true') {
      return;
    }
    var pageHeight = page.clientHeight;
    if (!pageHeight) {
      return;
    }
    var contentHeight = page.scrollHeight;
    if (contentHeight <= pageHeight + 1) {
      return;
    }

    var scale = pageHeight / contentHeight;
    var wrapper = document.createElement('div');
    wrapper.setAttribute(WRAPPER, 'true');
    wrapper.style.width = (100 / scale) + '%';
    wrapper.style.transformOrigin = 'top left';
    wrapper.style.transform = 'scale(' + scale + ')';
    while (page.firstChild) {
      wrapper.appendChild(page.firstChild);
    }
    page.appendChild(wrapper);
    page.setAttribute(SCALED, 'true');
  }

  function fitAll() {
    var pages = document.querySelectorAll('` + PageSelector + `');
    for (var i = 0; i < pages.length; i++) {
      fitPage(pages[i]);
    }
  }

  function run() {
    if (document.fonts && document.fonts.ready) {
      document.fonts.ready.then(fitAll, fitAll);
    } else {
      fitAll();
    }
  }

  if (document.readyState === 'complete') {
    run();
  } else {
    window.addEventListener('load', run);
  }
})();`

// backgroundScript copies the first page's computed background onto the root
// and body at render time, for colours the static pass could not resolve.
const backgroundScript = `(function () {
  function copy() {
    var page = document.querySelector('` + PageSelector + `');
    if (!page) {
      return;
    }
    var bg = window.getComputedStyle(page).backgroundColor;
    if (!bg || bg === 'transparent' || bg === 'rgba(0, 0, 0, 0)') {
      return;
    }
    document.documentElement.style.backgroundColor = bg;
    document.body.style.backgroundColor = bg;
  }
  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', copy);
  } else {
    copy();
  }
})();`

// MeasurementScript evaluates to the box of every element tagged by
// TagSections, relative to the page containing it.
const MeasurementScript = `(function () {
  var nodes = document.querySelectorAll('[` + AttrSectionIndex + `]');
  var boxes = [];
  for (var i = 0; i < nodes.length; i++) {
    var el = nodes[i];
    var page = el.closest('` + PageSelector + `');
    var origin = page ? page.getBoundingClientRect() : { left: 0, top: 0 };
    var rect = el.getBoundingClientRect();
    boxes.push({
      index: parseInt(el.getAttribute('` + AttrSectionIndex + `'), 10),
      left: rect.left - origin.left,
      top: rect.top - origin.top,
      width: rect.width,
      height: rect.height
    });
  }
  return boxes;
})()`

// FitScriptHash returns the Content-Security-Policy source expression that
// allows the shrink-to-fit script injected by NormalizeForDisplay.
func FitScriptHash() string {
	sum := sha256.Sum256([]byte(fitScript))
	return "'sha256-" + base64.StdEncoding.EncodeToString(sum[:]) + "'"
}
